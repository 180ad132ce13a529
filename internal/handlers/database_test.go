package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deskos/deskos-api/internal/models"
	"github.com/deskos/deskos-api/internal/services"
	"github.com/deskos/deskos-api/pkg/dto"
	"github.com/deskos/deskos-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupDatabaseTest(t *testing.T) (*testutil.MockDocumentService, http.Handler) {
	t.Helper()
	mockDocuments := new(testutil.MockDocumentService)
	handler := NewDatabaseHandler(mockDocuments, zap.NewNop())

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/api/db", handler.ListCollections)
	app.Post("/api/query", handler.Query)
	app.Post("/api/db/reset", handler.Reset)
	app.Get("/api/db/:collection", handler.ListDocuments)
	app.Post("/api/db/:collection", handler.CreateDocument)
	app.Get("/api/db/:collection/:id", handler.GetDocument)
	app.Put("/api/db/:collection/:id", handler.UpdateDocument)
	app.Delete("/api/db/:collection/:id", handler.DeleteDocument)

	return mockDocuments, app
}

func TestDatabaseHandler_ListCollections_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Collections", mock.Anything).Return([]string{"notes", "projects"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/db", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data []string `json:"data"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "projects"}, response.Data)

	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_CreateDocument_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	doc := &models.Document{
		ID:         "doc-1",
		Collection: "notes",
		Data:       json.RawMessage(`{"title": "hello"}`),
	}

	mockDocuments.On("Create", mock.Anything, "notes", mock.Anything).Return(doc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/db/notes", bytes.NewReader([]byte(`{"title": "hello"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response struct {
		Data  models.Document   `json:"data"`
		Links map[string]string `json:"links"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", response.Data.ID)
	assert.Equal(t, "/api/db/notes/doc-1", response.Links["self"])

	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_ListDocuments_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	result := &models.QueryResult{
		Documents: []models.Document{
			{ID: "doc-1", Collection: "notes", Data: json.RawMessage(`{}`)},
			{ID: "doc-2", Collection: "notes", Data: json.RawMessage(`{}`)},
		},
		Count: 7,
	}

	mockDocuments.On("List", mock.Anything, "notes", int64(2), int64(3)).Return(result, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/db/notes?limit=2&offset=3", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data []models.Document `json:"data"`
		Meta dto.ListMeta      `json:"meta"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Len(t, response.Data, 2)
	assert.Equal(t, int64(7), response.Meta.Count)
	assert.Equal(t, int64(2), response.Meta.Limit)
	assert.Equal(t, int64(3), response.Meta.Offset)

	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_ListDocuments_InvalidLimit(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/db/notes?limit=abc", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockDocuments.AssertNotCalled(t, "List")
}

func TestDatabaseHandler_GetDocument_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	doc := &models.Document{
		ID:         "doc-1",
		Collection: "notes",
		Data:       json.RawMessage(`{"title": "hello"}`),
	}

	mockDocuments.On("Get", mock.Anything, "notes", "doc-1").Return(doc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/db/notes/doc-1", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_GetDocument_NotFound(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Get", mock.Anything, "notes", "missing").Return(nil, services.ErrDocumentNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/db/notes/missing", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_UpdateDocument_NotFound(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Update", mock.Anything, "notes", "missing", mock.Anything).Return(nil, services.ErrDocumentNotFound)

	req := httptest.NewRequest(http.MethodPut, "/api/db/notes/missing", bytes.NewReader([]byte(`{"title": "x"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_DeleteDocument_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Delete", mock.Anything, "notes", "doc-1").Return(true, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/db/notes/doc-1", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "document deleted", response["message"])

	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_DeleteDocument_NotFound(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Delete", mock.Anything, "notes", "missing").Return(false, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/db/notes/missing", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_Reset_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Reset", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/db/reset", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_Query_Success(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	rows := []map[string]any{{"collection": "notes", "total": float64(3)}}
	mockDocuments.On("Query", mock.Anything, "SELECT collection, COUNT(*) AS total FROM documents GROUP BY collection").Return(rows, nil)

	body, _ := json.Marshal(dto.QueryRequest{Query: "SELECT collection, COUNT(*) AS total FROM documents GROUP BY collection"})
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data []map[string]any `json:"data"`
		Meta map[string]int   `json:"meta"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Len(t, response.Data, 1)
	assert.Equal(t, 1, response.Meta["count"])

	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_Query_NotAllowed(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("Query", mock.Anything, "DROP TABLE documents").Return(nil, services.ErrQueryNotAllowed)

	body, _ := json.Marshal(dto.QueryRequest{Query: "DROP TABLE documents"})
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockDocuments.AssertExpectations(t)
}

func TestDatabaseHandler_Query_Empty(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	body, _ := json.Marshal(dto.QueryRequest{Query: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockDocuments.AssertNotCalled(t, "Query")
}

func TestDatabaseHandler_ListDocuments_ServiceError(t *testing.T) {
	mockDocuments, app := setupDatabaseTest(t)

	mockDocuments.On("List", mock.Anything, "notes", int64(100), int64(0)).Return(nil, errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/api/db/notes", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	mockDocuments.AssertExpectations(t)
}
