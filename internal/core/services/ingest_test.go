package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/vector/bruteforce"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

func testDocument(path, content string) domain.Document {
	return domain.Document{
		ID:         domain.NewDocumentID(path),
		SourcePath: path,
		Title:      path,
		Content:    content,
		FileType:   domain.FileTypeText,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func newIngestFixture(t *testing.T, docs []domain.Document, embedder *fakeEmbedder) (*IngestService, *memStore, *bruteforce.Index) {
	t.Helper()

	settings := fastSettings()
	settings.Chunking.Size = 100
	settings.Chunking.Overlap = 20

	store := newMemStore()
	index := bruteforce.New()

	svc, err := NewIngestService(&fakeSource{docs: docs}, embedder, store, index, settings)
	require.NoError(t, err)
	svc.policy.baseDelay = time.Millisecond
	return svc, store, index
}

func TestIngestService_InvalidChunkingFailsFast(t *testing.T) {
	settings := fastSettings()
	settings.Chunking.Overlap = settings.Chunking.Size // overlap must be < size

	_, err := NewIngestService(&fakeSource{}, &fakeEmbedder{}, newMemStore(), bruteforce.New(), settings)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestIngestService_Ingest(t *testing.T) {
	docs := []domain.Document{
		testDocument("a.txt", strings.Repeat("vacation policy text ", 20)),
		testDocument("b.txt", strings.Repeat("testing coverage rules ", 20)),
	}
	svc, store, index := newIngestFixture(t, docs, &fakeEmbedder{})

	stats, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Greater(t, stats.Chunks, 0)
	assert.Zero(t, stats.Skipped)

	count, err := store.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Chunks, count)
	assert.Equal(t, stats.Chunks, index.Len())

	// Every stored chunk carries its embedding.
	chunks, err := store.AllChunks(context.Background())
	require.NoError(t, err)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestIngestService_ReingestIsIdempotent(t *testing.T) {
	docs := []domain.Document{
		testDocument("a.txt", strings.Repeat("remote work eligibility ", 20)),
	}
	embedder := &fakeEmbedder{}
	svc, store, index := newIngestFixture(t, docs, embedder)

	ctx := context.Background()
	first, err := svc.Ingest(ctx)
	require.NoError(t, err)
	require.Greater(t, first.Chunks, 0)

	embedCallsAfterFirst := embedder.calls

	second, err := svc.Ingest(ctx)
	require.NoError(t, err)

	assert.Zero(t, second.Chunks, "unchanged corpus must not re-embed")
	assert.Equal(t, first.Chunks, second.Skipped)
	assert.Equal(t, embedCallsAfterFirst, embedder.calls, "no embedding calls on re-ingest")

	count, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, count)
	assert.Equal(t, first.Chunks, index.Len())
}

func TestIngestService_EmptyCorpus(t *testing.T) {
	svc, _, index := newIngestFixture(t, nil, &fakeEmbedder{})

	stats, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, index.Len())
}

func TestIngestService_EmbeddingFailureSkipsDocument(t *testing.T) {
	docs := []domain.Document{
		testDocument("broken.txt", "short doc one"),
		testDocument("fine.txt", "short doc two"),
	}
	// First document's only embed call always fails, even across retries.
	embedder := &fakeEmbedder{failCalls: map[int]error{
		1: fmt.Errorf("%w: provider down", domain.ErrTransient),
		2: fmt.Errorf("%w: provider down", domain.ErrTransient),
		3: fmt.Errorf("%w: provider down", domain.ErrTransient),
	}}
	svc, store, _ := newIngestFixture(t, docs, embedder)

	stats, err := svc.Ingest(context.Background())
	require.NoError(t, err, "one bad document must not fail the run")

	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.Chunks)

	count, err := store.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestService_RemovesStaleDocuments(t *testing.T) {
	keep := testDocument("keep.txt", strings.Repeat("vacation policy text ", 20))
	gone := testDocument("gone.txt", strings.Repeat("obsolete onboarding notes ", 20))

	settings := fastSettings()
	settings.Chunking.Size = 100
	settings.Chunking.Overlap = 20

	source := &fakeSource{docs: []domain.Document{keep, gone}}
	store := newMemStore()
	index := bruteforce.New()
	svc, err := NewIngestService(source, &fakeEmbedder{}, store, index, settings)
	require.NoError(t, err)
	svc.policy.baseDelay = time.Millisecond

	ctx := context.Background()
	first, err := svc.Ingest(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, first.Documents)
	require.Zero(t, first.Removed)

	// The second file disappears from the corpus before the next pass.
	source.docs = []domain.Document{keep}

	second, err := svc.Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Removed)

	_, err = store.GetDocument(ctx, gone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, index.Len(), "index and store must agree after cleanup")
	assert.Equal(t, second.Skipped, count, "only the surviving document's chunks remain")
}

func TestIngestService_SourceFailureAborts(t *testing.T) {
	settings := fastSettings()
	svc, err := NewIngestService(
		&fakeSource{err: fmt.Errorf("disk gone")},
		&fakeEmbedder{}, newMemStore(), bruteforce.New(), settings,
	)
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background())
	assert.ErrorContains(t, err, "loading corpus")
}
