package driven

import "context"

// VectorIndex provides cosine-similarity candidate retrieval over stored
// chunk embeddings. It is written once during ingestion and read-only
// during querying.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID. Re-adding a present
	// chunk ID is a no-op, which keeps retried ingestion idempotent.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Remove drops a chunk's vector. Removing an absent chunk ID is a
	// no-op, so cleanup after a partial ingestion is safe to retry.
	Remove(ctx context.Context, chunkID string) error

	// Candidates finds the poolSize nearest chunks to the query vector,
	// ordered by descending cosine similarity. Returns domain.ErrEmptyIndex
	// when nothing has been indexed.
	Candidates(ctx context.Context, query []float32, poolSize int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}
