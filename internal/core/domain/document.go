package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// FileType identifies the format a document was ingested from.
// The set is closed: anything outside it is skipped at discovery time.
type FileType string

const (
	// FileTypeText is a plain text or markdown file.
	FileTypeText FileType = "text"
	// FileTypePDF is a PDF file whose text has been extracted.
	FileTypePDF FileType = "pdf"
)

// Document represents a single corpus file after text extraction.
// Documents are immutable once created; chunking and indexing only read them.
type Document struct {
	// ID is the deterministic identifier derived from the source path.
	ID string

	// SourcePath is the location the document was loaded from.
	SourcePath string

	// Title is a human-readable name derived from the file name.
	Title string

	// Content is the full extracted text.
	Content string

	// FileType tags the original format.
	FileType FileType

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-indexed.
	UpdatedAt time.Time
}

// Chunk is the atomic retrieval unit: a bounded, overlapping fragment
// of a document with positional metadata.
type Chunk struct {
	// ID is the deterministic identifier, stable across re-ingestion.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text of this fragment.
	Content string

	// StartOffset and EndOffset are byte offsets into the document content.
	StartOffset int
	EndOffset   int

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation, populated during indexing.
	Embedding []float32
}

// RetrievedChunk pairs a chunk with its similarity to the query that
// selected it, plus the document it came from so callers can cite the
// source. Produced per query and discarded afterwards.
type RetrievedChunk struct {
	Chunk      Chunk
	Document   Document
	Similarity float64
}

// NewDocumentID derives a stable document identifier from a source path.
func NewDocumentID(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	return hex.EncodeToString(sum[:8])
}

// NewChunkID derives a stable chunk identifier from its document and position.
// Stability is what makes re-ingestion idempotent per chunk.
func NewChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s:%04d", documentID, position)
}
