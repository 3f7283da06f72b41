// Package resultlog persists answer records as an append-only JSONL file.
package resultlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ResultSink = (*Sink)(nil)

// DefaultFileName is the log file created under the data directory.
const DefaultFileName = "answers.jsonl"

// Sink appends answer records to a JSONL file, one record per line.
// Existing lines are never rewritten.
type Sink struct {
	mu   sync.Mutex
	file *os.File
}

// NewSink opens (or creates) the result log at path in append mode.
func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create result log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}

	return &Sink{file: file}, nil
}

// Append writes one record as a single JSON line.
func (s *Sink) Append(_ context.Context, record domain.AnswerRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal answer record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append answer record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// ReadAll loads every record from a result log file. Used by reporting,
// not by the append path.
func ReadAll(path string) ([]domain.AnswerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read result log: %w", err)
	}

	var records []domain.AnswerRecord
	decoder := json.NewDecoder(bytes.NewReader(data))
	for decoder.More() {
		var record domain.AnswerRecord
		if err := decoder.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode answer record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}
