package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates bad chunking or retrieval parameters.
	// It is structural: the operation that triggered it aborts before
	// any corpus work starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyIndex indicates a query was attempted before any chunks
	// were indexed. Fatal for that query, not for the process.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrInsufficientCandidates indicates the candidate pool holds fewer
	// chunks than requested. Retrieval degrades to a partial result.
	ErrInsufficientCandidates = errors.New("insufficient retrieval candidates")

	// ErrEmbeddingUnavailable indicates the embedding capability failed
	// after the retry budget was exhausted.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation capability failed
	// after the retry budget was exhausted. The question is recorded with
	// a nil answer; the batch continues.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrTransient marks a capability failure worth retrying: timeouts
	// and 429/5xx class responses. Adapters wrap such failures with it.
	ErrTransient = errors.New("transient failure")
)

// IsTransient reports whether err represents a retryable capability failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
