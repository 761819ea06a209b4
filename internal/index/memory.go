package index

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// Memory is an in-process vector index. Search is an exact brute-force
// cosine scan, so results are exact top-k; the trade-off is linear scan
// cost, which is acceptable for corpora that fit in memory.
//
// Rebuild constructs a complete new generation off to the side and
// publishes it with a single pointer swap, so readers never observe a
// partially populated index.
type Memory struct {
	current atomic.Pointer[generation]
}

type generation struct {
	entries []Entry
	norms   []float64
}

// NewMemory creates an empty in-memory index. Search fails with
// domain.ErrIndexEmpty until the first non-empty Rebuild.
func NewMemory() *Memory {
	return &Memory{}
}

// Rebuild replaces the entire index contents atomically.
func (m *Memory) Rebuild(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	next := &generation{
		entries: make([]Entry, len(entries)),
		norms:   make([]float64, len(entries)),
	}
	copy(next.entries, entries)
	for i, e := range next.entries {
		next.norms[i] = vectorNorm(e.Embedding)
	}

	m.current.Store(next)
	return nil
}

// Search returns the k entries most similar to the query vector, ordered
// by descending cosine similarity with ties broken by insertion order.
func (m *Memory) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	gen := m.current.Load()
	if gen == nil || len(gen.entries) == 0 {
		return nil, domain.ErrIndexEmpty
	}

	queryNorm := vectorNorm(query)

	matches := make([]Match, len(gen.entries))
	for i, e := range gen.entries {
		matches[i] = Match{
			Entry: e,
			Score: cosine(query, queryNorm, e.Embedding, gen.norms[i]),
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Count returns the number of entries in the current generation.
func (m *Memory) Count(ctx context.Context) (int, error) {
	gen := m.current.Load()
	if gen == nil {
		return 0, nil
	}
	return len(gen.entries), nil
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, normA float64, b []float32, normB float64) float32 {
	if normA == 0 || normB == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (normA * normB))
}
