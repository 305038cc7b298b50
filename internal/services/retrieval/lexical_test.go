package retrieval

import "testing"

func TestLexicalRanksTermMatches(t *testing.T) {
	ix := newLexicalIndex()
	ix.add(0, "market volatility and price swings in equities")
	ix.add(1, "position sizing and capital preservation")
	ix.add(2, "volatility volatility everywhere in this market")

	hits := ix.search("volatility market", 10)
	if len(hits) == 0 {
		t.Fatal("expected hits")
	}
	for _, h := range hits {
		if h.ord == 1 {
			t.Fatal("document without query terms must not match")
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].score > hits[i-1].score {
			t.Fatalf("hits not sorted by score")
		}
	}
}

func TestLexicalRemove(t *testing.T) {
	ix := newLexicalIndex()
	ix.add(0, "alpha beta gamma")
	ix.add(1, "alpha delta")

	ix.remove(0, "alpha beta gamma")
	if ix.size() != 1 {
		t.Fatalf("size = %d, want 1", ix.size())
	}

	hits := ix.search("beta", 10)
	if len(hits) != 0 {
		t.Fatalf("removed terms still match: %v", hits)
	}
	hits = ix.search("alpha", 10)
	if len(hits) != 1 || hits[0].ord != 1 {
		t.Fatalf("surviving chunk missing: %v", hits)
	}
}

func TestLexicalTopK(t *testing.T) {
	ix := newLexicalIndex()
	for i := 0; i < 20; i++ {
		ix.add(i, "common token plus filler")
	}

	hits := ix.search("common", 5)
	if len(hits) != 5 {
		t.Fatalf("hits = %d, want 5", len(hits))
	}
}

func TestLexicalTokenize(t *testing.T) {
	toks := tokenize("What is RSI-14, really?")
	want := []string{"what", "is", "rsi", "14", "really"}
	if len(toks) != len(want) {
		t.Fatalf("tokens = %v", toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, toks[i], want[i])
		}
	}
}
