package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/askdocs-cli/internal/chunking"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// embedBatchSize bounds how many chunk texts go into one embedding request.
const embedBatchSize = 32

// IngestService discovers, chunks, embeds, and indexes the corpus.
type IngestService struct {
	source   driven.DocumentSource
	splitter *chunking.Splitter
	embedder driven.EmbeddingService
	store    driven.DocumentStore
	index    driven.VectorIndex
	policy   *callPolicy
}

// NewIngestService wires the ingestion pipeline. Fails fast on invalid
// chunking parameters, before any corpus work.
func NewIngestService(
	source driven.DocumentSource,
	embedder driven.EmbeddingService,
	store driven.DocumentStore,
	index driven.VectorIndex,
	settings *domain.AppSettings,
) (*IngestService, error) {
	splitter, err := chunking.New(settings.Chunking.Size, settings.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	return &IngestService{
		source:   source,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		index:    index,
		policy:   newCallPolicy(settings.Retry),
	}, nil
}

// Ingest runs one full ingestion pass. Chunk ids are deterministic, so
// re-running over an unchanged corpus embeds nothing and leaves the
// index as it was. A document whose embedding fails after retries is
// logged and skipped; the remaining documents still go through.
func (s *IngestService) Ingest(ctx context.Context) (driving.IngestStats, error) {
	var stats driving.IngestStats

	docs, err := s.source.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("loading corpus: %w", err)
	}

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		seen[doc.ID] = true

		indexed, skipped, err := s.ingestDocument(ctx, doc)
		if err != nil {
			logger.Warn("Skipping document %s: %v", doc.SourcePath, err)
			continue
		}
		stats.Documents++
		stats.Chunks += indexed
		stats.Skipped += skipped
	}

	removed, err := s.removeStale(ctx, seen)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed

	total, err := s.store.CountChunks(ctx)
	if err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}
	logger.Info("Ingested %d documents: %d chunks indexed, %d already present, %d stale documents removed, %d chunks total",
		stats.Documents, stats.Chunks, stats.Skipped, stats.Removed, total)
	return stats, nil
}

// removeStale deletes stored documents whose source file has left the
// corpus, unindexing their chunks first so retrieval never resolves a
// hit against a deleted chunk.
func (s *IngestService) removeStale(ctx context.Context, seen map[string]bool) (int, error) {
	stored, err := s.store.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing documents: %w", err)
	}

	removed := 0
	for _, doc := range stored {
		if seen[doc.ID] {
			continue
		}
		chunks, err := s.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return removed, fmt.Errorf("loading chunks of %s: %w", doc.ID, err)
		}
		for _, chunk := range chunks {
			if err := s.index.Remove(ctx, chunk.ID); err != nil {
				return removed, fmt.Errorf("unindexing chunk %s: %w", chunk.ID, err)
			}
		}
		if err := s.store.DeleteDocument(ctx, doc.ID); err != nil {
			return removed, fmt.Errorf("deleting document %s: %w", doc.ID, err)
		}
		logger.Info("Removed stale document %s (%s)", doc.ID, doc.SourcePath)
		removed++
	}
	return removed, nil
}

// ingestDocument stores one document and indexes its chunks. Returns
// how many chunks were newly embedded and how many were already there.
func (s *IngestService) ingestDocument(ctx context.Context, doc domain.Document) (indexed, skipped int, err error) {
	if err := s.store.SaveDocument(ctx, &doc); err != nil {
		return 0, 0, fmt.Errorf("saving document: %w", err)
	}

	chunks := s.splitter.Split(doc)
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	// Partition into chunks that still need an embedding and chunks a
	// previous run already indexed, against one query for the whole
	// document rather than a lookup per chunk.
	existing, err := s.store.GetChunks(ctx, doc.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("loading stored chunks: %w", err)
	}
	stored := make(map[string]domain.Chunk, len(existing))
	for _, chunk := range existing {
		stored[chunk.ID] = chunk
	}

	var pending []domain.Chunk
	for _, chunk := range chunks {
		prev, ok := stored[chunk.ID]
		if ok && len(prev.Embedding) > 0 && prev.Content == chunk.Content {
			if err := s.index.Add(ctx, prev.ID, prev.Embedding); err != nil {
				return indexed, skipped, fmt.Errorf("indexing stored chunk %s: %w", prev.ID, err)
			}
			skipped++
			continue
		}
		pending = append(pending, chunk)
	}

	for start := 0; start < len(pending); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		var embeddings [][]float32
		err := s.policy.do(ctx, "embedding", func(ctx context.Context) error {
			var embedErr error
			embeddings, embedErr = s.embedder.EmbedBatch(ctx, texts)
			return embedErr
		})
		if err != nil {
			return indexed, skipped, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		if len(embeddings) != len(batch) {
			return indexed, skipped, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(batch))
		}

		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}
		if err := s.store.SaveChunks(ctx, batch); err != nil {
			return indexed, skipped, fmt.Errorf("saving chunks: %w", err)
		}
		for _, chunk := range batch {
			if err := s.index.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
				return indexed, skipped, fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
			}
			indexed++
		}
	}

	return indexed, skipped, nil
}
