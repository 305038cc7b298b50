package retrieval

import (
	"context"
	"fmt"
	"sync"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
)

// Indexer owns the chunk store and keeps the lexical and vector
// indexes in sync. Chunks are embedded and fully constructed before
// they are published under the write lock, so an in-flight AddDocument
// never corrupts a concurrent search.
type Indexer struct {
	chunker  *Chunker
	embedder drepo.Embedder
	metrics  drepo.Metrics

	mu       sync.RWMutex
	lexical  *lexicalIndex
	vector   *vectorIndex
	chunks   map[int]models.Chunk // ord -> chunk
	chunkIDs map[string]int       // chunk id -> ord
	docOrds  map[string][]int     // document id -> its chunk ords
	docs     map[string]models.SourceDocument
	docOrder []string // insertion order for listings
	nextOrd  int
}

func NewIndexer(chunker *Chunker, embedder drepo.Embedder, metrics drepo.Metrics) *Indexer {
	return &Indexer{
		chunker:  chunker,
		embedder: embedder,
		metrics:  metrics,
		lexical:  newLexicalIndex(),
		vector:   newVectorIndex(embedder.Dim()),
		chunks:   make(map[int]models.Chunk),
		chunkIDs: make(map[string]int),
		docOrds:  make(map[string][]int),
		docs:     make(map[string]models.SourceDocument),
	}
}

// AddDocument chunks, embeds and indexes doc, returning the created
// chunks. Embedding runs outside the lock; publication is atomic per
// chunk and verified across both indexes afterwards. A document id that
// is already indexed is rejected (documents are immutable once indexed).
func (ix *Indexer) AddDocument(ctx context.Context, doc models.SourceDocument) ([]models.Chunk, error) {
	ix.mu.RLock()
	_, exists := ix.docs[doc.ID]
	ix.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("document %s already indexed", doc.ID)
	}

	spans := ix.chunker.Split(doc.RawText)
	pending := make([]models.Chunk, 0, len(spans))
	for i, sp := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := ix.embedder.Embed(ctx, sp.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, doc.ID, err)
		}
		pending = append(pending, models.Chunk{
			ID:            fmt.Sprintf("%s:%d", doc.ID, i),
			DocumentID:    doc.ID,
			SequenceIndex: i,
			Text:          sp.Text,
			Embedding:     emb,
		})
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Embedding ran outside the lock; a concurrent AddDocument with the
	// same id may have won the race since the first check.
	if _, exists := ix.docs[doc.ID]; exists {
		return nil, fmt.Errorf("document %s already indexed", doc.ID)
	}

	ords := make([]int, 0, len(pending))
	for _, ch := range pending {
		ord := ix.nextOrd
		ix.nextOrd++
		ix.lexical.add(ord, ch.Text)
		ix.vector.add(ord, ch.Embedding)
		ix.chunks[ord] = ch
		ix.chunkIDs[ch.ID] = ord
		ords = append(ords, ord)
	}

	if ix.lexical.size() != ix.vector.size() {
		// A disagreement means a bug, not a runtime condition. Roll the
		// document back and halt its indexing.
		for _, ord := range ords {
			ch := ix.chunks[ord]
			ix.lexical.remove(ord, ch.Text)
			ix.vector.remove(ord)
			delete(ix.chunks, ord)
			delete(ix.chunkIDs, ch.ID)
		}
		ix.metrics.RecordError("index_corruption")
		return nil, &models.IndexCorruptionError{
			DocumentID: doc.ID,
			Detail:     fmt.Sprintf("lexical=%d vector=%d", ix.lexical.size(), ix.vector.size()),
		}
	}

	ix.docOrds[doc.ID] = ords
	ix.docs[doc.ID] = doc
	ix.docOrder = append(ix.docOrder, doc.ID)
	ix.metrics.RecordChunksIndexed(len(pending))
	return pending, nil
}

// RemoveDocument removes exactly the chunks belonging to id from both
// indexes. Unknown ids are a no-op.
func (ix *Indexer) RemoveDocument(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ords, ok := ix.docOrds[id]
	if !ok {
		return false
	}
	for _, ord := range ords {
		ch := ix.chunks[ord]
		ix.lexical.remove(ord, ch.Text)
		ix.vector.remove(ord)
		delete(ix.chunks, ord)
		delete(ix.chunkIDs, ch.ID)
	}
	delete(ix.docOrds, id)
	delete(ix.docs, id)
	for i, d := range ix.docOrder {
		if d == id {
			ix.docOrder = append(ix.docOrder[:i], ix.docOrder[i+1:]...)
			break
		}
	}
	return true
}

// Documents lists indexed document metadata in insertion order.
func (ix *Indexer) Documents() []models.SourceDocument {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]models.SourceDocument, 0, len(ix.docOrder))
	for _, id := range ix.docOrder {
		out = append(out, ix.docs[id])
	}
	return out
}

// Counts returns (documents, chunks).
func (ix *Indexer) Counts() (int, int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs), len(ix.chunks)
}

// ChunkByID resolves a chunk id back to its chunk.
func (ix *Indexer) ChunkByID(id string) (models.Chunk, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ord, ok := ix.chunkIDs[id]
	if !ok {
		return models.Chunk{}, false
	}
	return ix.chunks[ord], true
}

// searchLexical and searchVector expose index queries under the read
// lock, resolving ords to chunks for the retriever.
func (ix *Indexer) searchLexical(query string, k int) []candidate {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolve(ix.lexical.search(query, k))
}

func (ix *Indexer) searchVector(query []float32, k int) []candidate {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolve(ix.vector.search(query, k))
}

type candidate struct {
	ord   int
	score float64
	chunk models.Chunk
	title string
}

// resolve maps index hits to chunks, preserving the hit order.
func (ix *Indexer) resolve(hits []scored) []candidate {
	out := make([]candidate, 0, len(hits))
	for _, h := range hits {
		ch, ok := ix.chunks[h.ord]
		if !ok {
			continue
		}
		out = append(out, candidate{
			ord:   h.ord,
			score: h.score,
			chunk: ch,
			title: ix.docs[ch.DocumentID].Title,
		})
	}
	return out
}
