package service

import (
	"context"
	"strings"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/index"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RetrievalConfig controls retrieval behavior. RelevanceFloor is the
// minimum cosine similarity a candidate needs to be used as generation
// context; candidates below it are dropped even inside the top-k.
type RetrievalConfig struct {
	RelevanceFloor float32
}

// RetrievalService orchestrates embed-then-search with relevance
// thresholding.
type RetrievalService struct {
	embedder EmbeddingClient
	index    index.Index
	cfg      RetrievalConfig
}

// NewRetrievalService creates a new RetrievalService instance
func NewRetrievalService(embedder EmbeddingClient, idx index.Index, cfg RetrievalConfig) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    idx,
		cfg:      cfg,
	}
}

// Retrieve embeds the question, queries the index for the topK nearest
// entries and applies the relevance floor. An empty result means no
// candidate was relevant enough; it is distinct from domain.ErrIndexEmpty,
// which is returned when nothing has been ingested yet. Parameters are
// validated before any network call.
func (s *RetrievalService) Retrieve(ctx context.Context, question string, topK int) (*domain.RetrievalResult, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	embedding, err := s.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		span.SetError(err)
		return nil, domain.EmbeddingUnavailable(err)
	}

	matches, err := s.index.Search(ctx, embedding, topK)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	result := &domain.RetrievalResult{
		Chunks: make([]domain.ScoredChunk, 0, len(matches)),
	}
	for _, m := range matches {
		if m.Score < s.cfg.RelevanceFloor {
			continue
		}
		result.Chunks = append(result.Chunks, domain.ScoredChunk{
			ChunkID:    m.Entry.ChunkID,
			DocumentID: m.Entry.DocumentID,
			Source:     m.Entry.Source,
			Text:       m.Entry.Text,
			Score:      m.Score,
		})
	}

	return result, nil
}
