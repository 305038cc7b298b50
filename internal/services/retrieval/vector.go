package retrieval

import (
	"math"
	"sort"
)

// vectorIndex is a flat nearest-neighbor index over L2-normalized
// embeddings. Insertion is O(dim); search is an exhaustive cosine scan,
// which is the right trade-off for a single-process in-memory corpus.
// Not goroutine-safe on its own; the Indexer serializes access.
type vectorIndex struct {
	dim     int
	vectors map[int][]float32 // ord -> normalized embedding
}

func newVectorIndex(dim int) *vectorIndex {
	return &vectorIndex{dim: dim, vectors: make(map[int][]float32)}
}

// add inserts a normalized copy of v under ord.
func (ix *vectorIndex) add(ord int, v []float32) {
	ix.vectors[ord] = normalize(v)
}

func (ix *vectorIndex) remove(ord int) {
	delete(ix.vectors, ord)
}

func (ix *vectorIndex) size() int { return len(ix.vectors) }

// search returns the k nearest chunks by cosine similarity, best first.
func (ix *vectorIndex) search(query []float32, k int) []scored {
	if len(ix.vectors) == 0 || k <= 0 {
		return nil
	}
	q := normalize(query)

	out := make([]scored, 0, len(ix.vectors))
	for ord, v := range ix.vectors {
		out = append(out, scored{ord: ord, score: dot(q, v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].ord < out[j].ord
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
