package retrieval

import (
	"math"
	"testing"
)

func TestVectorSearchCosineOrder(t *testing.T) {
	ix := newVectorIndex(3)
	ix.add(0, []float32{1, 0, 0})
	ix.add(1, []float32{0.9, 0.1, 0})
	ix.add(2, []float32{0, 0, 1})

	hits := ix.search(normalize([]float32{1, 0, 0}), 3)
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	if hits[0].ord != 0 {
		t.Fatalf("best hit ord = %d, want 0", hits[0].ord)
	}
	if hits[1].ord != 1 {
		t.Fatalf("second hit ord = %d, want 1", hits[1].ord)
	}
	if math.Abs(hits[0].score-1) > 1e-6 {
		t.Fatalf("identical vector score = %v, want 1", hits[0].score)
	}
}

func TestVectorRemove(t *testing.T) {
	ix := newVectorIndex(2)
	ix.add(0, []float32{1, 0})
	ix.add(1, []float32{0, 1})

	ix.remove(0)
	if ix.size() != 1 {
		t.Fatalf("size = %d, want 1", ix.size())
	}
	hits := ix.search(normalize([]float32{1, 0}), 10)
	for _, h := range hits {
		if h.ord == 0 {
			t.Fatal("removed vector still returned")
		}
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	v := normalize([]float32{3, 4})
	norm := math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]))
	if math.Abs(norm-1) > 1e-6 {
		t.Fatalf("norm = %v, want 1", norm)
	}
}
