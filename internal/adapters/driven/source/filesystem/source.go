// Package filesystem provides a document source backed by a local
// directory tree.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source loads supported documents from a root directory.
type Source struct {
	rootPath string
}

// New creates a filesystem document source rooted at rootPath.
func New(rootPath string) *Source {
	return &Source{rootPath: rootPath}
}

// RootPath returns the directory this source reads from.
func (s *Source) RootPath() string {
	return s.rootPath
}

// Load walks the root directory and returns every supported document.
// Hidden files, unsupported extensions, and files whose text cannot be
// extracted are skipped with a warning rather than failing the walk.
func (s *Source) Load(ctx context.Context) ([]domain.Document, error) {
	info, err := os.Stat(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", s.rootPath)
	}

	var docs []domain.Document
	err = filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != s.rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fileType, ok := typeForExtension(filepath.Ext(name))
		if !ok {
			logger.Debug("Skipping unsupported file: %s", path)
			return nil
		}

		doc, err := s.loadFile(path, fileType)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if strings.TrimSpace(doc.Content) == "" {
			logger.Warn("Skipping %s: no extractable text", path)
			return nil
		}

		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus: %w", err)
	}

	return docs, nil
}

// loadFile reads one file and builds a document from it.
func (s *Source) loadFile(path string, fileType domain.FileType) (domain.Document, error) {
	var content string
	var err error

	switch fileType {
	case domain.FileTypePDF:
		content, err = extractPDFText(path)
	default:
		var raw []byte
		raw, err = os.ReadFile(path)
		content = string(raw)
	}
	if err != nil {
		return domain.Document{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, err
	}

	now := time.Now().UTC()
	return domain.Document{
		ID:         domain.NewDocumentID(path),
		SourcePath: path,
		Title:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content:    content,
		FileType:   fileType,
		CreatedAt:  fi.ModTime().UTC(),
		UpdatedAt:  now,
	}, nil
}

// typeForExtension maps a file extension to a supported document type.
func typeForExtension(ext string) (domain.FileType, bool) {
	switch strings.ToLower(ext) {
	case ".txt", ".md":
		return domain.FileTypeText, true
	case ".pdf":
		return domain.FileTypePDF, true
	default:
		return "", false
	}
}
