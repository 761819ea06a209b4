package domain

// ScoredChunk is one retrieval candidate: chunk text with its cosine
// similarity to the question.
type ScoredChunk struct {
	ChunkID    string
	DocumentID string
	Source     string
	Text       string
	Score      float32
}

// RetrievalResult is the ranked outcome of a retrieval pass. It is
// produced per query and never persisted. An empty result means every
// candidate fell below the relevance floor; it is distinct from an empty
// index, which surfaces ErrIndexEmpty instead.
type RetrievalResult struct {
	Chunks []ScoredChunk
}

// Empty reports whether no candidate survived the relevance floor.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Chunks) == 0
}
