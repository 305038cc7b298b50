package retrieval

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"testing"

	"FinSight/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordEventIngested(string, string)  {}
func (nopMetrics) RecordAlert(string, models.Severity) {}
func (nopMetrics) RecordChunksIndexed(int)             {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordLastPrice(string, float64)     {}
func (nopMetrics) RecordLatency(string, float64)       {}

// bagEmbedder is a deterministic token-hash embedder for tests.
type bagEmbedder struct {
	dim int
}

func (e bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		v[int(h.Sum32())%e.dim]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= inv
		}
	}
	return v, nil
}

func (e bagEmbedder) Dim() int { return e.dim }

func testIndexer() *Indexer {
	return NewIndexer(NewChunker(120, 20), bagEmbedder{dim: 64}, nopMetrics{})
}

func doc(id, title, text string) models.SourceDocument {
	return models.SourceDocument{ID: id, Title: title, RawText: text}
}

func TestAddDocumentChunks(t *testing.T) {
	ix := testIndexer()

	chunks, err := ix.AddDocument(context.Background(), doc("d1", "Volatility",
		strings.Repeat("market volatility means wider swings ", 12)))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, ch := range chunks {
		if ch.DocumentID != "d1" {
			t.Fatalf("chunk %d document = %q", i, ch.DocumentID)
		}
		if ch.SequenceIndex != i {
			t.Fatalf("chunk %d sequence = %d", i, ch.SequenceIndex)
		}
		if len(ch.Embedding) != 64 {
			t.Fatalf("chunk %d embedding dim = %d", i, len(ch.Embedding))
		}
	}

	ndocs, nchunks := ix.Counts()
	if ndocs != 1 || nchunks != len(chunks) {
		t.Fatalf("counts = (%d, %d), want (1, %d)", ndocs, nchunks, len(chunks))
	}
}

func TestAddDocumentDeterministic(t *testing.T) {
	text := strings.Repeat("risk management position sizing stop losses ", 10)

	a, err := testIndexer().AddDocument(context.Background(), doc("d1", "Risk", text))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := testIndexer().AddDocument(context.Background(), doc("d1", "Risk", text))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Text != b[i].Text {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestAddDocumentDuplicateRejected(t *testing.T) {
	ix := testIndexer()

	if _, err := ix.AddDocument(context.Background(), doc("d1", "A", "some indexable text here")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ix.AddDocument(context.Background(), doc("d1", "A again", "different text entirely")); err == nil {
		t.Fatal("duplicate document id must be rejected")
	}
}

func TestRemoveDocument(t *testing.T) {
	ix := testIndexer()

	ctx := context.Background()
	if _, err := ix.AddDocument(ctx, doc("d1", "A", strings.Repeat("alpha beta gamma ", 15))); err != nil {
		t.Fatalf("add d1: %v", err)
	}
	chunks, err := ix.AddDocument(ctx, doc("d2", "B", strings.Repeat("delta epsilon zeta ", 15)))
	if err != nil {
		t.Fatalf("add d2: %v", err)
	}

	if !ix.RemoveDocument("d1") {
		t.Fatal("remove d1 reported not found")
	}
	if ix.RemoveDocument("d1") {
		t.Fatal("second remove must be a no-op")
	}

	ndocs, nchunks := ix.Counts()
	if ndocs != 1 || nchunks != len(chunks) {
		t.Fatalf("counts = (%d, %d) after removal", ndocs, nchunks)
	}
	// d2's chunks remain resolvable
	if _, ok := ix.ChunkByID(chunks[0].ID); !ok {
		t.Fatal("d2 chunk lost after removing d1")
	}
	// d1's are gone
	if _, ok := ix.ChunkByID("d1:0"); ok {
		t.Fatal("d1 chunk still resolvable")
	}
}

func TestDocumentsInsertionOrder(t *testing.T) {
	ix := testIndexer()

	ctx := context.Background()
	for _, id := range []string{"d1", "d2", "d3"} {
		if _, err := ix.AddDocument(ctx, doc(id, "T "+id, "text for "+id+" long enough to index")); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	ix.RemoveDocument("d2")

	docs := ix.Documents()
	if len(docs) != 2 || docs[0].ID != "d1" || docs[1].ID != "d3" {
		t.Fatalf("documents = %+v", docs)
	}
}

func TestAddDocumentConcurrentDuplicate(t *testing.T) {
	ix := testIndexer()
	d := doc("dup", "Duplicate", strings.Repeat("overlapping writes must not double-index ", 10))

	const attempts = 8
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ix.AddDocument(context.Background(), d)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	succeeded := 0
	for err := range errCh {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d adds succeeded for one id, want exactly 1", succeeded)
	}

	wantChunks := len(NewChunker(120, 20).Split(d.RawText))
	docCount, chunkCount := ix.Counts()
	if docCount != 1 || chunkCount != wantChunks {
		t.Fatalf("counts = (%d docs, %d chunks), want (1, %d)", docCount, chunkCount, wantChunks)
	}
}
