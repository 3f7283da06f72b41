package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// RetrievalService selects a diverse top-k chunk set with maximal
// marginal relevance (MMR). Plain nearest-neighbour retrieval clusters
// near-duplicate passages when a document repeats a topic; MMR trades a
// controlled amount of relevance for coverage.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	store    driven.DocumentStore
	policy   *callPolicy
}

// NewRetrievalService creates a retriever over the given index.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.DocumentStore,
	settings *domain.AppSettings,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		store:    store,
		policy:   newCallPolicy(settings.Retry),
	}
}

// candidate is one pool member during MMR selection.
type candidate struct {
	chunk    domain.Chunk
	querySim float64
	selected bool
}

// Retrieve embeds the query, pulls the FetchK nearest candidates, and
// greedily picks K of them by MMR score. When the pool holds fewer than
// K candidates the available ones are returned (partial-result policy).
func (s *RetrievalService) Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievedChunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var queryVec []float32
	err := s.policy.do(ctx, "query embedding", func(ctx context.Context) error {
		var embedErr error
		queryVec, embedErr = s.embedder.Embed(ctx, query)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.index.Candidates(ctx, queryVec, opts.FetchK)
	if err != nil {
		return nil, err
	}

	pool := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.store.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			return nil, fmt.Errorf("loading candidate %s: %w", hit.ChunkID, err)
		}
		pool = append(pool, candidate{chunk: *chunk, querySim: hit.Similarity})
	}

	k := opts.K
	if len(pool) < k {
		logger.Warn("Candidate pool has %d chunks, wanted %d: %v", len(pool), k, domain.ErrInsufficientCandidates)
		k = len(pool)
	}

	results := s.selectMMR(pool, k, opts.Lambda)
	if err := s.hydrateDocuments(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// hydrateDocuments attaches the source document to each result so
// callers can cite where a chunk came from. Chunks from the same
// document share one lookup.
func (s *RetrievalService) hydrateDocuments(ctx context.Context, results []domain.RetrievedChunk) error {
	cache := make(map[string]*domain.Document)
	for i := range results {
		docID := results[i].Chunk.DocumentID
		doc, ok := cache[docID]
		if !ok {
			var err error
			doc, err = s.store.GetDocument(ctx, docID)
			if err != nil {
				return fmt.Errorf("loading document %s: %w", docID, err)
			}
			cache[docID] = doc
		}
		results[i].Document = *doc
	}
	return nil
}

// selectMMR runs the greedy MMR loop over the pool.
//
// score(c) = lambda*sim(c, query) - (1-lambda)*max over selected s of sim(c, s)
//
// The redundancy term is zero while nothing is selected, so the first
// pick is always the best query match. Exact score ties prefer the
// higher query similarity, then the lowest chunk id, keeping selection
// deterministic. lambda=1 reduces to plain top-k similarity ordering.
func (s *RetrievalService) selectMMR(pool []candidate, k int, lambda float64) []domain.RetrievedChunk {
	selected := make([]domain.RetrievedChunk, 0, k)

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)

		for i := range pool {
			if pool[i].selected {
				continue
			}

			redundancy := math.Inf(-1)
			for j := range pool {
				if !pool[j].selected {
					continue
				}
				sim := cosineSimilarity(pool[i].chunk.Embedding, pool[j].chunk.Embedding)
				if sim > redundancy {
					redundancy = sim
				}
			}
			if math.IsInf(redundancy, -1) {
				// Nothing selected yet: no redundancy penalty.
				redundancy = 0
			}

			score := lambda*pool[i].querySim - (1-lambda)*redundancy

			switch {
			case best == -1 || score > bestScore:
				best, bestScore = i, score
			case score == bestScore:
				if pool[i].querySim > pool[best].querySim ||
					(pool[i].querySim == pool[best].querySim && pool[i].chunk.ID < pool[best].chunk.ID) {
					best = i
				}
			}
		}

		pool[best].selected = true
		selected = append(selected, domain.RetrievedChunk{
			Chunk:      pool[best].chunk,
			Similarity: pool[best].querySim,
		})
	}

	return selected
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// A zero vector yields 0.
func cosineSimilarity(a, b []float32) float64 {
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
