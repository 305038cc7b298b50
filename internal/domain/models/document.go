package models

import "time"

// SourceDocument is an externally supplied knowledge-base document.
// Immutable once indexed.
type SourceDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	RawText   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a bounded span of document text, the unit of retrieval.
// Created at index time, never mutated, removed only with its parent.
type Chunk struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	SequenceIndex int       `json:"sequence_index"`
	Text          string    `json:"text"`
	Embedding     []float32 `json:"-"`
}

// RetrievalResult is one ranked candidate from hybrid retrieval.
type RetrievalResult struct {
	ChunkID     string  `json:"chunk_id"`
	Score       float64 `json:"score"`
	SourceTitle string  `json:"source_title"`
}

// QueryResponse is the answer to one question.
type QueryResponse struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
	Degraded  bool      `json:"degraded,omitempty"`
}
