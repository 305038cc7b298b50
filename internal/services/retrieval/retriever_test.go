package retrieval

import (
	"context"
	"testing"
)

func seededRetriever(t *testing.T) *Retriever {
	t.Helper()
	ix := testIndexer()
	ctx := context.Background()
	seed := []struct{ id, title, text string }{
		{"d1", "Volatility Analysis", "Market volatility measures the dispersion of returns. High volatility means wider price swings and greater risk for traders."},
		{"d2", "Risk Management", "Position sizing and stop losses limit downside risk. Diversification spreads exposure across uncorrelated assets."},
		{"d3", "Momentum Indicators", "RSI and MACD are momentum indicators. Crossovers and divergences signal potential trend changes."},
	}
	for _, d := range seed {
		if _, err := ix.AddDocument(ctx, doc(d.id, d.title, d.text)); err != nil {
			t.Fatalf("seed %s: %v", d.id, err)
		}
	}
	return NewRetriever(ix, bagEmbedder{dim: 64}, 10, 10, 0.5)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := NewRetriever(testIndexer(), bagEmbedder{dim: 64}, 10, 10, 0.5)

	results, err := r.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}
}

func TestRetrieveTopK(t *testing.T) {
	r := seededRetriever(t)

	results, err := r.Retrieve(context.Background(), "volatility risk momentum", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) > 2 {
		t.Fatalf("results = %d, want <= 2", len(results))
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
}

func TestRetrieveRanksRelevantFirst(t *testing.T) {
	r := seededRetriever(t)

	results, err := r.Retrieve(context.Background(), "market volatility price swings", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].SourceTitle != "Volatility Analysis" {
		t.Fatalf("top result from %q, want Volatility Analysis", results[0].SourceTitle)
	}
}

func TestRetrieveScoresNonIncreasing(t *testing.T) {
	r := seededRetriever(t)

	results, err := r.Retrieve(context.Background(), "risk indicators volatility", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("score %d (%v) > score %d (%v)", i, results[i].Score, i-1, results[i-1].Score)
		}
	}
}

func TestRetrieveNoDuplicateChunks(t *testing.T) {
	r := seededRetriever(t)

	results, err := r.Retrieve(context.Background(), "risk volatility momentum indicators", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[string]bool, len(results))
	for _, res := range results {
		if seen[res.ChunkID] {
			t.Fatalf("chunk %s appears twice", res.ChunkID)
		}
		seen[res.ChunkID] = true
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	r := seededRetriever(t)

	a, err := r.Retrieve(context.Background(), "risk volatility", 5)
	if err != nil {
		t.Fatalf("first retrieve: %v", err)
	}
	b, err := r.Retrieve(context.Background(), "risk volatility", 5)
	if err != nil {
		t.Fatalf("second retrieve: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ChunkID != b[i].ChunkID || a[i].Score != b[i].Score {
			t.Fatalf("result %d differs between identical queries", i)
		}
	}
}

func TestRetrieveCanceledContext(t *testing.T) {
	r := seededRetriever(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Retrieve(ctx, "volatility", 5); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestRetrieveZeroK(t *testing.T) {
	r := seededRetriever(t)

	results, err := r.Retrieve(context.Background(), "volatility", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("results = %v, want nil", results)
	}
}

func TestChunkResolution(t *testing.T) {
	r := seededRetriever(t)

	results, err := r.Retrieve(context.Background(), "volatility", 1)
	if err != nil || len(results) == 0 {
		t.Fatalf("retrieve: %v (%d results)", err, len(results))
	}
	ch, ok := r.Chunk(results[0].ChunkID)
	if !ok {
		t.Fatalf("chunk %s not resolvable", results[0].ChunkID)
	}
	if ch.Text == "" {
		t.Fatal("resolved chunk has no text")
	}
}
