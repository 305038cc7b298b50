package retrieval

import (
	"context"
	"fmt"
	"sort"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
)

// Retriever merges lexical and vector search into one ranking.
type Retriever struct {
	indexer  *Indexer
	embedder drepo.Embedder

	vectorK      int
	lexicalK     int
	vectorWeight float64
}

func NewRetriever(indexer *Indexer, embedder drepo.Embedder, vectorK, lexicalK int, vectorWeight float64) *Retriever {
	if vectorK <= 0 {
		vectorK = 10
	}
	if lexicalK <= 0 {
		lexicalK = 10
	}
	if vectorWeight <= 0 || vectorWeight > 1 {
		vectorWeight = 0.5
	}
	return &Retriever{
		indexer:      indexer,
		embedder:     embedder,
		vectorK:      vectorK,
		lexicalK:     lexicalK,
		vectorWeight: vectorWeight,
	}
}

// merged carries one chunk's normalized scores from both result sets.
type merged struct {
	cand     candidate
	combined float64
	lexical  float64
}

// Retrieve embeds the question, runs both searches and merges the
// results: scores are min-max normalized to [0,1] within their own
// result set, combined as a weighted sum, ties broken by lexical score
// then by chunk insertion order. An empty index yields an empty slice,
// not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]models.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if _, chunks := r.indexer.Counts(); chunks == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qvec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vecHits := r.indexer.searchVector(qvec, r.vectorK)
	lexHits := r.indexer.searchLexical(question, r.lexicalK)

	byOrd := make(map[int]*merged, len(vecHits)+len(lexHits))
	for _, c := range vecHits {
		byOrd[c.ord] = &merged{cand: c}
	}
	for _, c := range lexHits {
		if m, ok := byOrd[c.ord]; ok {
			m.lexical = c.score
		} else {
			byOrd[c.ord] = &merged{cand: c, lexical: c.score}
		}
	}

	vecNorm := normalizeScores(vecHits)
	lexNorm := normalizeScores(lexHits)
	for ord, m := range byOrd {
		m.combined = r.vectorWeight*vecNorm[ord] + (1-r.vectorWeight)*lexNorm[ord]
		m.lexical = lexNorm[ord]
	}

	out := make([]*merged, 0, len(byOrd))
	for _, m := range byOrd {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].combined != out[j].combined {
			return out[i].combined > out[j].combined
		}
		if out[i].lexical != out[j].lexical {
			return out[i].lexical > out[j].lexical
		}
		return out[i].cand.ord < out[j].cand.ord
	})

	if len(out) > k {
		out = out[:k]
	}
	results := make([]models.RetrievalResult, 0, len(out))
	for _, m := range out {
		results = append(results, models.RetrievalResult{
			ChunkID:     m.cand.chunk.ID,
			Score:       m.combined,
			SourceTitle: m.cand.title,
		})
	}
	return results, nil
}

// Chunk resolves a retrieval result back to its chunk for prompt
// assembly.
func (r *Retriever) Chunk(chunkID string) (models.Chunk, bool) {
	return r.indexer.ChunkByID(chunkID)
}

// normalizeScores min-max scales a result set to [0,1]. A degenerate
// set (all scores equal) maps every member to 1.
func normalizeScores(hits []candidate) map[int]float64 {
	out := make(map[int]float64, len(hits))
	if len(hits) == 0 {
		return out
	}
	min, max := hits[0].score, hits[0].score
	for _, h := range hits {
		if h.score < min {
			min = h.score
		}
		if h.score > max {
			max = h.score
		}
	}
	for _, h := range hits {
		if max == min {
			out[h.ord] = 1
		} else {
			out[h.ord] = (h.score - min) / (max - min)
		}
	}
	return out
}
