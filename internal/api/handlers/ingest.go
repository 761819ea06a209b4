package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/paperchat-ai/paperchat/internal/api"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/service"
)

// Ingestor rebuilds the retrieval index from documents.
type Ingestor interface {
	Ingest(ctx context.Context, docs []*domain.Document) (*service.IngestStats, error)
	IngestFromCorpus(ctx context.Context) (*service.IngestStats, error)
}

type IngestHandler struct {
	ingestor Ingestor
}

func NewIngestHandler(ingestor Ingestor) *IngestHandler {
	return &IngestHandler{ingestor: ingestor}
}

type IngestDocument struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

type IngestRequest struct {
	// Pointer so an absent field is distinguishable from an explicit
	// empty list: absent means re-read the corpus source, empty is an
	// error rather than a silent full rebuild.
	Documents *[]IngestDocument `json:"documents"`
}

type IngestResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// Ingest rebuilds the index. Documents supplied inline replace the whole
// corpus; an empty body or absent documents field re-reads the configured
// corpus source instead.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Documents != nil && len(*req.Documents) == 0 {
		api.Error(w, http.StatusBadRequest, "documents must not be empty; omit the field to re-read the corpus source")
		return
	}

	var (
		stats *service.IngestStats
		err   error
	)
	if req.Documents == nil {
		stats, err = h.ingestor.IngestFromCorpus(r.Context())
	} else {
		docs := make([]*domain.Document, 0, len(*req.Documents))
		for _, d := range *req.Documents {
			docs = append(docs, &domain.Document{
				ID:   uuid.NewString(),
				Path: d.Path,
				Text: d.Text,
			})
		}
		stats, err = h.ingestor.Ingest(r.Context(), docs)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IngestResponse{
		Documents: stats.Documents,
		Chunks:    stats.Chunks,
	})
}
