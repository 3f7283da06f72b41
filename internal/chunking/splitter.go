// Package chunking provides fixed-size overlapping text chunking.
package chunking

import (
	"fmt"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1200

// DefaultOverlap is the default number of overlapping bytes.
const DefaultOverlap = 200

// Splitter slides a fixed-size window across document content.
// Larger chunks preserve cross-sentence context (policy clauses spanning
// multiple lines); overlap keeps a fact that straddles a boundary intact
// in at least one chunk.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. Parameters are validated up front:
// chunking configuration errors must surface before any corpus work.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d, must be positive", domain.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d, must be in [0, %d)", domain.ErrInvalidConfig, overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split divides the document content into overlapping chunks with
// positional metadata. Deterministic: identical input yields identical
// chunk ids, offsets, and counts. The final chunk is truncated to the
// remaining length, never padded.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	content := doc.Content
	contentLen := len(content)
	if contentLen == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	chunks := make([]domain.Chunk, 0, contentLen/step+1)

	position := 0
	for start := 0; start < contentLen; start += step {
		end := start + s.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			ID:          domain.NewChunkID(doc.ID, position),
			DocumentID:  doc.ID,
			Content:     content[start:end],
			StartOffset: start,
			EndOffset:   end,
			Position:    position,
		})
		position++

		if end == contentLen {
			break
		}
	}

	return chunks
}
