package driven

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// DocumentSource yields the corpus documents to index.
// Files of unsupported type are skipped with a warning, not an error;
// the same goes for files whose text cannot be extracted.
type DocumentSource interface {
	// Load returns all supported documents under the configured location.
	Load(ctx context.Context) ([]domain.Document, error)
}
