// Package bruteforce provides an exact cosine-similarity vector index.
// The corpus is small enough that a linear scan beats the operational
// cost of an approximate-nearest-neighbour structure; durability comes
// from the SQLite chunk store the index is rebuilt from on startup.
package bruteforce

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	chunkID string
	vector  []float32
}

// Index is an in-memory exact-search vector index.
type Index struct {
	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

// New creates an empty index.
func New() *Index {
	return &Index{byID: make(map[string]int)}
}

// NewFromStore creates an index populated with every embedded chunk in
// the store. Chunks without embeddings are skipped.
func NewFromStore(ctx context.Context, store driven.DocumentStore) (*Index, error) {
	chunks, err := store.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	idx := New()
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if err := idx.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return nil, fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
		}
	}
	return idx, nil
}

// Add inserts a vector for the given chunk ID.
// Re-adding a present chunk ID replaces its vector, so a retried
// ingestion converges to the same index state.
func (x *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" || len(embedding) == 0 {
		return fmt.Errorf("%w: empty chunk id or embedding", domain.ErrInvalidConfig)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	if i, ok := x.byID[chunkID]; ok {
		x.entries[i].vector = vec
		return nil
	}
	x.byID[chunkID] = len(x.entries)
	x.entries = append(x.entries, entry{chunkID: chunkID, vector: vec})
	return nil
}

// Remove drops a chunk's vector. Removing an absent chunk ID is a no-op.
func (x *Index) Remove(_ context.Context, chunkID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	i, ok := x.byID[chunkID]
	if !ok {
		return nil
	}

	last := len(x.entries) - 1
	if i != last {
		x.entries[i] = x.entries[last]
		x.byID[x.entries[i].chunkID] = i
	}
	x.entries = x.entries[:last]
	delete(x.byID, chunkID)
	return nil
}

// Candidates finds the poolSize nearest chunks to the query vector,
// ordered by descending cosine similarity. Ties break on ascending
// chunk id for deterministic retrieval.
func (x *Index) Candidates(_ context.Context, query []float32, poolSize int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if poolSize <= 0 {
		return nil, fmt.Errorf("%w: pool size %d", domain.ErrInvalidConfig, poolSize)
	}

	hits := make([]driven.VectorHit, 0, len(x.entries))
	for _, e := range x.entries {
		hits = append(hits, driven.VectorHit{
			ChunkID:    e.chunkID,
			Similarity: Cosine(query, e.vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if poolSize < len(hits) {
		hits = hits[:poolSize]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Cosine computes the cosine similarity between two vectors. Vectors of
// mismatched length compare over the shorter prefix; a zero vector
// yields similarity 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
