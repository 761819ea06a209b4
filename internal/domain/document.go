package domain

import "fmt"

// Document is a raw source text ingested into the corpus. Documents are
// immutable once created and are replaced wholesale by a reindex.
type Document struct {
	ID   string
	Path string
	Text string
}

// NewDocument creates a Document instance
func NewDocument(id, path, text string) *Document {
	return &Document{
		ID:   id,
		Path: path,
		Text: text,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Path == "" {
		return fmt.Errorf("document path is required")
	}
	return nil
}

// Chunk is a bounded text segment derived deterministically from a
// Document. Overlap is the number of leading runes shared with the
// previous chunk; concatenating each chunk's Text[Overlap:] in Index
// order reconstructs the document.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
	Overlap    int
}

// NonOverlappingSpan returns the part of the chunk not shared with the
// previous chunk.
func (c Chunk) NonOverlappingSpan() string {
	runes := []rune(c.Text)
	if c.Overlap <= 0 || c.Overlap >= len(runes) {
		if c.Overlap >= len(runes) && c.Index > 0 {
			return ""
		}
		return c.Text
	}
	return string(runes[c.Overlap:])
}
