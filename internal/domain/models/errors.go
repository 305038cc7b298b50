package models

import (
	"errors"
	"fmt"
)

// ErrGenerationUnavailable marks generator failures after retries. The
// query path maps it to a degraded answer, never to a bare failure.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// ValidationError reports a malformed raw event. Dropped, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// IndexCorruptionError reports a lexical/vector index disagreement.
// Programming-error class: indexing for the offending document halts.
type IndexCorruptionError struct {
	DocumentID string
	Detail     string
}

func (e *IndexCorruptionError) Error() string {
	return fmt.Sprintf("index corruption for document %s: %s", e.DocumentID, e.Detail)
}
