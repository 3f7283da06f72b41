package driving

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// IngestStats summarises one ingestion run.
type IngestStats struct {
	// Documents is the number of documents processed.
	Documents int

	// Chunks is the number of chunks embedded and indexed this run.
	Chunks int

	// Skipped is the number of chunks already indexed and left untouched.
	Skipped int

	// Removed is the number of stale documents deleted because their
	// source file no longer exists in the corpus.
	Removed int
}

// Ingestor builds the index from the corpus directory.
type Ingestor interface {
	// Ingest discovers, chunks, embeds, and indexes the corpus.
	// Safe to call repeatedly: already-indexed chunks are no-ops.
	Ingest(ctx context.Context) (IngestStats, error)
}

// Retriever selects a diverse top-k chunk set for a query.
type Retriever interface {
	// Retrieve embeds the query and runs MMR selection over the
	// candidate pool. Returns fewer than K chunks when the pool is
	// smaller (partial-result policy).
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievedChunk, error)
}

// Answerer produces grounded answer records.
type Answerer interface {
	// Answer retrieves context for the question, invokes generation once,
	// and appends the resulting record to the result log. Generation
	// failures yield a record with a nil answer and a reason, not an error.
	Answer(ctx context.Context, question string) (domain.AnswerRecord, error)
}

// Validator runs the grounding-validation battery.
type Validator interface {
	// Validate answers every question in the suite and checks the
	// grounding expectations. One failing question never aborts the rest.
	Validate(ctx context.Context, suite domain.ValidationSuite) (domain.ValidationReport, error)
}
