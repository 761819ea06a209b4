package service

import (
	"iter"

	"github.com/google/uuid"
	"github.com/paperchat-ai/paperchat/internal/domain"
)

// ChunkConfig controls document chunking for embeddings.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking. Larger chunks
// mean fewer embedding requests per document.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    2048,
		Overlap: 200,
	}
}

// Validate enforces 0 <= overlap < size.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return domain.ErrInvalidChunkConfig
	}
	return nil
}

// TextChunk is one window produced by ChunkText. Overlap is the number
// of leading runes shared with the previous window.
type TextChunk struct {
	Index   int
	Text    string
	Overlap int
}

// ChunkText splits text into overlapping fixed-size rune windows. The
// returned sequence is lazy and restartable; ranging over it twice
// yields the same windows. Text shorter than the configured size yields
// exactly one chunk. Every source rune appears in at least one chunk,
// and concatenating each chunk's Text[Overlap:] reconstructs the input.
// An invalid config falls back to DefaultChunkConfig.
func ChunkText(text string, cfg ChunkConfig) iter.Seq[TextChunk] {
	if cfg.Validate() != nil {
		cfg = DefaultChunkConfig()
	}

	return func(yield func(TextChunk) bool) {
		runes := []rune(text)
		if len(runes) <= cfg.Size {
			yield(TextChunk{Index: 0, Text: text})
			return
		}

		stride := cfg.Size - cfg.Overlap
		start := 0
		for i := 0; ; i++ {
			end := start + cfg.Size
			last := end >= len(runes)
			if last {
				end = len(runes)
			}

			overlap := 0
			if i > 0 {
				overlap = cfg.Overlap
			}
			if !yield(TextChunk{Index: i, Text: string(runes[start:end]), Overlap: overlap}) {
				return
			}
			if last {
				return
			}
			start += stride
		}
	}
}

// ChunkDocument materializes the chunk sequence for a document,
// assigning chunk ids.
func ChunkDocument(doc *domain.Document, cfg ChunkConfig) ([]domain.Chunk, error) {
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for tc := range ChunkText(doc.Text, cfg) {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      tc.Index,
			Text:       tc.Text,
			Overlap:    tc.Overlap,
		})
	}
	return chunks, nil
}
