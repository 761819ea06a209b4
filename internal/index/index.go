// Package index defines the vector index contract shared by the in-memory
// and Postgres-backed implementations.
package index

import (
	"context"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// Entry is one indexed chunk: vector, text and source metadata. Entries
// are write-once per rebuild cycle; the index never mixes generations.
type Entry struct {
	ChunkID    string
	DocumentID string
	Source     string
	Text       string
	Embedding  []float32
}

// Match is an entry paired with its similarity to a query vector.
type Match struct {
	Entry Entry
	Score float32
}

// Index stores (vector, text, metadata) tuples and answers nearest
// neighbor queries by cosine similarity.
//
// Rebuild atomically replaces the entire contents: concurrent Search
// calls observe either the pre-rebuild or the fully-post-rebuild state,
// never a partial mix. Search returns matches ordered by descending
// similarity with ties broken by insertion order; k greater than the
// entry count returns all entries. Search fails with
// domain.ErrIndexEmpty before the first successful non-empty rebuild.
type Index interface {
	Rebuild(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, query []float32, k int) ([]Match, error)
	Count(ctx context.Context) (int, error)
}

// Validate checks an entry before it is admitted to a rebuild.
func (e Entry) Validate(dimensions int) error {
	if e.ChunkID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "index entry chunk id is required")
	}
	if dimensions > 0 && len(e.Embedding) != dimensions {
		return domain.ErrDimensionMismatch
	}
	return nil
}
