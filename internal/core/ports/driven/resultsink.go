package driven

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// ResultSink is the append-only log of answer records.
// Prior entries are never rewritten.
type ResultSink interface {
	// Append persists one answer record.
	Append(ctx context.Context, record domain.AnswerRecord) error

	// Close releases resources.
	Close() error
}
