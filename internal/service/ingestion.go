package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/index"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
)

// DocumentSource supplies raw documents for ingestion.
type DocumentSource interface {
	Load(ctx context.Context) ([]*domain.Document, error)
}

// IngestStats summarizes a completed ingestion pass.
type IngestStats struct {
	Documents int
	Chunks    int
}

// IngestionService turns raw documents into an index generation:
// chunk, embed, then publish everything with a single atomic rebuild.
type IngestionService struct {
	embedder   EmbeddingClient
	index      index.Index
	chunkCfg   ChunkConfig
	dimensions int
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(embedder EmbeddingClient, idx index.Index, chunkCfg ChunkConfig, dimensions int) *IngestionService {
	return &IngestionService{
		embedder:   embedder,
		index:      idx,
		chunkCfg:   chunkCfg,
		dimensions: dimensions,
	}
}

// Ingest rebuilds the index from the given documents. The new generation
// is built completely off to the side and published in one swap; on any
// failure the previous generation remains fully intact and serving.
func (s *IngestionService) Ingest(ctx context.Context, docs []*domain.Document) (*IngestStats, error) {
	if len(docs) == 0 {
		return nil, domain.IngestionFailed(domain.ErrNoDocuments)
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Ingest", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	var entries []index.Entry
	for _, doc := range docs {
		chunks, err := ChunkDocument(doc, s.chunkCfg)
		if err != nil {
			span.SetError(err)
			return nil, domain.IngestionFailed(err)
		}

		source := filepath.Base(doc.Path)
		for _, chunk := range chunks {
			embedding, err := s.embedder.GenerateEmbedding(ctx, chunk.Text)
			if err != nil {
				wrapped := domain.IngestionFailed(fmt.Errorf("embedding chunk %d of %s: %w", chunk.Index, doc.Path, err))
				span.SetError(wrapped)
				return nil, wrapped
			}

			entry := index.Entry{
				ChunkID:    chunk.ID,
				DocumentID: doc.ID,
				Source:     source,
				Text:       chunk.Text,
				Embedding:  embedding,
			}
			if err := entry.Validate(s.dimensions); err != nil {
				span.SetError(err)
				return nil, domain.IngestionFailed(err)
			}
			entries = append(entries, entry)
		}
	}

	if err := s.index.Rebuild(ctx, entries); err != nil {
		span.SetError(err)
		return nil, domain.IngestionFailed(err)
	}

	return &IngestStats{
		Documents: len(docs),
		Chunks:    len(entries),
	}, nil
}

// IngestFromSource loads documents from the configured corpus source and
// ingests them.
func (s *IngestionService) IngestFromSource(ctx context.Context, src DocumentSource) (*IngestStats, error) {
	docs, err := src.Load(ctx)
	if err != nil {
		return nil, domain.IngestionFailed(err)
	}
	return s.Ingest(ctx, docs)
}

// Ready reports whether at least one ingestion has completed and the
// index is non-empty.
func (s *IngestionService) Ready(ctx context.Context) bool {
	n, err := s.index.Count(ctx)
	return err == nil && n > 0
}
