package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/vector/bruteforce"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// seedIndex stores and indexes chunks with embeddings computed by the
// fake embedder.
func seedIndex(t *testing.T, store *memStore, index *bruteforce.Index, texts map[string]string) {
	t.Helper()
	ctx := context.Background()
	embedder := &fakeEmbedder{}

	ids := make([]string, 0, len(texts))
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		docID := strings.SplitN(id, ":", 2)[0]
		doc := domain.Document{ID: docID, Title: "doc " + docID, SourcePath: docID + ".txt"}
		require.NoError(t, store.SaveDocument(ctx, &doc))

		chunk := domain.Chunk{
			ID:         id,
			DocumentID: docID,
			Content:    texts[id],
			Embedding:  embedder.embed(texts[id]),
		}
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{chunk}))
		require.NoError(t, index.Add(ctx, chunk.ID, chunk.Embedding))
	}
}

func newRetrieverFixture(t *testing.T, texts map[string]string) *RetrievalService {
	t.Helper()
	store := newMemStore()
	index := bruteforce.New()
	seedIndex(t, store, index, texts)
	return NewRetrievalService(&fakeEmbedder{}, index, store, fastSettings())
}

func TestRetrievalService_ValidatesOptions(t *testing.T) {
	svc := newRetrieverFixture(t, map[string]string{"a:0000": "text"})

	tests := []struct {
		name string
		opts domain.RetrievalOptions
	}{
		{"zero k", domain.RetrievalOptions{K: 0, FetchK: 5, Lambda: 0.5}},
		{"fetchK below k", domain.RetrievalOptions{K: 5, FetchK: 3, Lambda: 0.5}},
		{"lambda above one", domain.RetrievalOptions{K: 2, FetchK: 5, Lambda: 1.5}},
		{"negative lambda", domain.RetrievalOptions{K: 2, FetchK: 5, Lambda: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Retrieve(context.Background(), "query", tt.opts)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestRetrievalService_EmptyIndex(t *testing.T) {
	svc := NewRetrievalService(&fakeEmbedder{}, bruteforce.New(), newMemStore(), fastSettings())

	_, err := svc.Retrieve(context.Background(), "anything", domain.RetrievalOptions{K: 3, FetchK: 10, Lambda: 0.5})
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestRetrievalService_LambdaOneMatchesTopK(t *testing.T) {
	texts := map[string]string{
		"doc:0000": "vacation days policy employees",
		"doc:0001": "testing coverage requirements pipeline",
		"doc:0002": "vacation request approval supervisor",
		"doc:0003": "deployment environments staging production",
	}
	svc := newRetrieverFixture(t, texts)
	ctx := context.Background()

	selected, err := svc.Retrieve(ctx, "vacation days", domain.RetrievalOptions{K: 3, FetchK: 4, Lambda: 1})
	require.NoError(t, err)
	require.Len(t, selected, 3)

	// With lambda=1 the redundancy term vanishes: selection order must be
	// descending query similarity, exactly plain top-k.
	for i := 1; i < len(selected); i++ {
		assert.GreaterOrEqual(t, selected[i-1].Similarity, selected[i].Similarity)
	}
	assert.Equal(t, "doc:0000", selected[0].Chunk.ID)
}

func TestRetrievalService_NeverDuplicatesAndCapsAtK(t *testing.T) {
	texts := map[string]string{
		"doc:0000": "alpha beta gamma",
		"doc:0001": "alpha beta delta",
		"doc:0002": "alpha epsilon zeta",
		"doc:0003": "unrelated content here",
		"doc:0004": "alpha beta gamma delta",
	}
	svc := newRetrieverFixture(t, texts)

	selected, err := svc.Retrieve(context.Background(), "alpha beta", domain.RetrievalOptions{K: 3, FetchK: 5, Lambda: 0.5})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(selected), 3)
	seen := make(map[string]bool)
	for _, rc := range selected {
		assert.False(t, seen[rc.Chunk.ID], "chunk %s selected twice", rc.Chunk.ID)
		seen[rc.Chunk.ID] = true
	}
}

func TestRetrievalService_PartialResultsWhenPoolIsSmall(t *testing.T) {
	texts := map[string]string{
		"doc:0000": "only chunk present",
		"doc:0001": "second chunk present",
	}
	svc := newRetrieverFixture(t, texts)

	selected, err := svc.Retrieve(context.Background(), "chunk", domain.RetrievalOptions{K: 7, FetchK: 20, Lambda: 0.5})
	require.NoError(t, err, "undersized pool degrades to partial results, not an error")
	assert.Len(t, selected, 2)
}

func TestRetrievalService_MMRPrefersDiversity(t *testing.T) {
	// Two near-identical chunks about vacations plus one about coverage.
	// Plain top-2 would pick both vacation chunks; MMR at lambda=0.5
	// should pick one vacation chunk and the coverage chunk.
	texts := map[string]string{
		"doc:0000": "vacaciones dias empleados nuevos quince",
		"doc:0001": "vacaciones dias empleados nuevos quince anuales",
		"doc:0002": "cobertura tests minimo ochenta por ciento",
	}
	store := newMemStore()
	index := bruteforce.New()
	seedIndex(t, store, index, texts)
	svc := NewRetrievalService(&fakeEmbedder{}, index, store, fastSettings())

	query := "vacaciones dias cobertura"
	selected, err := svc.Retrieve(context.Background(), query, domain.RetrievalOptions{K: 2, FetchK: 3, Lambda: 0.5})
	require.NoError(t, err)
	require.Len(t, selected, 2)

	ids := []string{selected[0].Chunk.ID, selected[1].Chunk.ID}
	assert.Contains(t, ids, "doc:0002", "diverse chunk must displace the near-duplicate")
}

func TestRetrievalService_HydratesSourceDocuments(t *testing.T) {
	texts := map[string]string{
		"aaa:0000": "vacation policy employees",
		"aaa:0001": "vacation request approval",
		"bbb:0000": "testing coverage requirements",
	}
	svc := newRetrieverFixture(t, texts)

	selected, err := svc.Retrieve(context.Background(), "vacation testing", domain.RetrievalOptions{K: 3, FetchK: 3, Lambda: 0.5})
	require.NoError(t, err)
	require.Len(t, selected, 3)

	for _, rc := range selected {
		assert.Equal(t, rc.Chunk.DocumentID, rc.Document.ID)
		assert.Equal(t, "doc "+rc.Chunk.DocumentID, rc.Document.Title)
	}
}

func TestRetrievalService_DeterministicAcrossRuns(t *testing.T) {
	texts := map[string]string{
		"doc:0000": "alpha beta gamma",
		"doc:0001": "alpha beta gamma", // identical content, distinct id
		"doc:0002": "delta epsilon",
	}
	svc := newRetrieverFixture(t, texts)
	ctx := context.Background()
	opts := domain.RetrievalOptions{K: 2, FetchK: 3, Lambda: 0.5}

	first, err := svc.Retrieve(ctx, "alpha", opts)
	require.NoError(t, err)
	second, err := svc.Retrieve(ctx, "alpha", opts)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Chunk.ID, second[i].Chunk.ID)
	}
	// Identical embeddings tie on every score; the lower chunk id wins.
	assert.Equal(t, "doc:0000", first[0].Chunk.ID)
}

func TestRetrievalService_EmbeddingFailureAfterRetries(t *testing.T) {
	store := newMemStore()
	index := bruteforce.New()
	seedIndex(t, store, index, map[string]string{"a:0000": "text"})

	embedder := &fakeEmbedder{failCalls: map[int]error{
		1: fmt.Errorf("%w: down", domain.ErrTransient),
		2: fmt.Errorf("%w: down", domain.ErrTransient),
		3: fmt.Errorf("%w: down", domain.ErrTransient),
	}}
	svc := NewRetrievalService(embedder, index, store, fastSettings())
	svc.policy.baseDelay = time.Millisecond

	_, err := svc.Retrieve(context.Background(), "query", domain.RetrievalOptions{K: 1, FetchK: 1, Lambda: 0.5})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
