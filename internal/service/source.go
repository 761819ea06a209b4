package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/extract"
)

// FSSource loads .txt, .md and .pdf documents from a directory tree.
type FSSource struct {
	Dir string
}

// Load walks the directory and returns one document per readable file
// with a supported extension. Files with no extractable text are skipped.
func (s FSSource) Load(ctx context.Context) ([]*domain.Document, error) {
	var docs []*domain.Document

	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		var text string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			text = string(data)
		case ".pdf":
			var err error
			text, err = extract.PDFTextFromFile(path)
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", path, err)
			}
		default:
			return nil
		}

		if strings.TrimSpace(text) == "" {
			return nil
		}
		docs = append(docs, domain.NewDocument(uuid.NewString(), path, text))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ObjectStore abstracts the bucket operations an ObjectSource needs.
type ObjectStore interface {
	ListKeys(ctx context.Context) ([]string, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// ObjectSource loads corpus documents from an S3-compatible bucket.
type ObjectSource struct {
	Store ObjectStore
}

// Load fetches every supported object in the bucket and extracts its
// text.
func (s ObjectSource) Load(ctx context.Context) ([]*domain.Document, error) {
	keys, err := s.Store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var docs []*domain.Document
	for _, key := range keys {
		var text string
		switch strings.ToLower(filepath.Ext(key)) {
		case ".txt", ".md":
			data, err := s.Store.GetObject(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
			}
			text = string(data)
		case ".pdf":
			data, err := s.Store.GetObject(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
			}
			text, err = extract.PDFText(data)
			if err != nil {
				return nil, fmt.Errorf("failed to extract %s: %w", key, err)
			}
		default:
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.NewDocument(uuid.NewString(), key, text))
	}
	return docs, nil
}
