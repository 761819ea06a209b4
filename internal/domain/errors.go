package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches DomainErrors by code so wrapped instances compare equal
// to their sentinel through errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeEmbeddingUnavailable = "EMBEDDING_UNAVAILABLE"
	ErrCodeIndexEmpty           = "INDEX_EMPTY"
	ErrCodeGenerationFailed     = "GENERATION_FAILED"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeSessionBusy          = "SESSION_BUSY"
	ErrCodeIngestionFailed      = "INGESTION_FAILED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidTopK        = NewDomainError(ErrCodeValidation, "top_k must be a positive integer")
	ErrEmptyQuestion      = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptySessionID     = NewDomainError(ErrCodeValidation, "session id cannot be empty")
	ErrNoDocuments        = NewDomainError(ErrCodeValidation, "no documents to ingest")
	ErrInvalidChunkConfig = NewDomainError(ErrCodeValidation, "overlap must be non-negative and strictly less than chunk size")
	ErrDimensionMismatch  = NewDomainError(ErrCodeValidation, "embedding dimension does not match the index")
)

// Retrieval and generation errors
var (
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeEmbeddingUnavailable, "embedding backend unreachable")
	ErrIndexEmpty           = NewDomainError(ErrCodeIndexEmpty, "vector index has no entries, ingest documents first")
	ErrGenerationFailed     = NewDomainError(ErrCodeGenerationFailed, "generative model call failed")
	ErrGenerationTimeout    = NewDomainError(ErrCodeTimeout, "generative model call timed out")
)

// Session errors
var (
	ErrSessionBusy     = NewDomainError(ErrCodeSessionBusy, "session is already processing a question")
	ErrSessionNotFound = NewDomainError(ErrCodeNotFound, "session not found")
)

// Ingestion errors
var (
	ErrIngestionFailed = NewDomainError(ErrCodeIngestionFailed, "document ingestion failed")
)

// EmbeddingUnavailable wraps a transport error from the embedding backend.
func EmbeddingUnavailable(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingUnavailable, "embedding backend unreachable", err)
}

// GenerationFailed wraps a generative model error.
func GenerationFailed(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeGenerationFailed, "generative model call failed", err)
}

// GenerationTimeout wraps a deadline error from the generative model call.
func GenerationTimeout(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeTimeout, "generative model call timed out", err)
}

// IngestionFailed wraps an ingestion pipeline error. The previous index
// generation keeps serving when ingestion fails.
func IngestionFailed(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIngestionFailed, "document ingestion failed", err)
}
