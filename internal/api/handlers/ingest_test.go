package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIngestor records which path was taken.
type fakeIngestor struct {
	stats      *service.IngestStats
	err        error
	inlineDocs []*domain.Document
	fromCorpus int
}

func (f *fakeIngestor) Ingest(ctx context.Context, docs []*domain.Document) (*service.IngestStats, error) {
	f.inlineDocs = docs
	return f.stats, f.err
}

func (f *fakeIngestor) IngestFromCorpus(ctx context.Context) (*service.IngestStats, error) {
	f.fromCorpus++
	return f.stats, f.err
}

func docsOf(docs ...IngestDocument) *[]IngestDocument {
	return &docs
}

func TestIngestInlineDocuments(t *testing.T) {
	ingestor := &fakeIngestor{stats: &service.IngestStats{Documents: 1, Chunks: 4}}
	handler := NewIngestHandler(ingestor)

	rec := postJSON(t, handler.Ingest, IngestRequest{Documents: docsOf(
		IngestDocument{Path: "handbook.txt", Text: "leave policy"},
	)})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp IngestResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 1, resp.Documents)
	assert.Equal(t, 4, resp.Chunks)

	require.Len(t, ingestor.inlineDocs, 1)
	assert.Equal(t, "handbook.txt", ingestor.inlineDocs[0].Path)
	assert.Equal(t, "leave policy", ingestor.inlineDocs[0].Text)
	assert.NotEmpty(t, ingestor.inlineDocs[0].ID)
	assert.Zero(t, ingestor.fromCorpus)
}

func TestIngestEmptyBodyUsesCorpusSource(t *testing.T) {
	ingestor := &fakeIngestor{stats: &service.IngestStats{Documents: 3, Chunks: 9}}
	handler := NewIngestHandler(ingestor)

	req := httptest.NewRequest("POST", "/", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	handler.Ingest(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, ingestor.fromCorpus)
	assert.Nil(t, ingestor.inlineDocs)
}

func TestIngestAbsentDocumentsFieldUsesCorpusSource(t *testing.T) {
	ingestor := &fakeIngestor{stats: &service.IngestStats{Documents: 2, Chunks: 6}}
	handler := NewIngestHandler(ingestor)

	req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.Ingest(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, ingestor.fromCorpus)
	assert.Nil(t, ingestor.inlineDocs)
}

func TestIngestEmptyDocumentsListRejected(t *testing.T) {
	ingestor := &fakeIngestor{stats: &service.IngestStats{}}
	handler := NewIngestHandler(ingestor)

	req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(`{"documents":[]}`)))
	rec := httptest.NewRecorder()
	handler.Ingest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, ingestor.fromCorpus)
	assert.Nil(t, ingestor.inlineDocs)
}

func TestIngestFailure(t *testing.T) {
	ingestor := &fakeIngestor{err: domain.IngestionFailed(assert.AnError)}
	handler := NewIngestHandler(ingestor)

	rec := postJSON(t, handler.Ingest, IngestRequest{Documents: docsOf(
		IngestDocument{Path: "doc.txt", Text: "text"},
	)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIngestInvalidBody(t *testing.T) {
	handler := NewIngestHandler(&fakeIngestor{})

	req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte("{bad")))
	rec := httptest.NewRecorder()
	handler.Ingest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
