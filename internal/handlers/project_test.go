package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deskos/deskos-api/internal/ai"
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

func setupProjectTest(t *testing.T) (*testutil.MockProjectService, *testutil.MockAppService, *testutil.MockAIClient, http.Handler) {
	t.Helper()
	mockProjects := new(testutil.MockProjectService)
	mockApps := new(testutil.MockAppService)
	mockAI := new(testutil.MockAIClient)
	handler := NewProjectHandler(mockProjects, mockApps, mockAI, zap.NewNop())

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/api/projects", handler.List)
	app.Post("/api/projects", handler.Create)
	app.Get("/api/published-projects", handler.ListPublished)
	app.Get("/api/projects/:projectId", handler.Get)
	app.Put("/api/projects/:projectId", handler.Update)
	app.Delete("/api/projects/:projectId", handler.Delete)
	app.Post("/api/projects/:projectId/publish", handler.Publish)
	app.Get("/api/projects/:projectId/versions", handler.ListVersions)
	app.Post("/api/projects/:projectId/versions", handler.CreateVersion)
	app.Put("/api/projects/:projectId/versions/current", handler.SwitchVersion)
	app.Delete("/api/projects/:projectId/versions/:versionNumber", handler.DeleteVersion)
	app.Post("/api/projects/:projectId/convert", handler.Convert)

	return mockProjects, mockApps, mockAI, app
}

func TestProjectHandler_Create_Success(t *testing.T) {
	mockProjects, _, mockAI, app := setupProjectTest(t)

	metadata := &ai.AppMetadata{Name: "Todo List", Description: "Track tasks", Icon: "📝"}
	project := &models.Project{
		ID:            "proj-1",
		Name:          "Todo List",
		Description:   "Track tasks",
		Icon:          "📝",
		Status:        models.ProjectStatusDraft,
		InitialPrompt: "build a todo list",
		Versions:      []models.Version{},
	}

	mockAI.On("GenerateMetadata", mock.Anything, "build a todo list", (*string)(nil)).Return(metadata, nil)
	mockProjects.On("Create", mock.Anything, services.CreateProjectParams{
		Prompt:      "build a todo list",
		Name:        "Todo List",
		Description: "Track tasks",
		Icon:        "📝",
	}).Return(project, nil)

	body, _ := json.Marshal(dto.CreateProjectRequest{Prompt: "build a todo list"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response struct {
		Data models.Project `json:"data"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "proj-1", response.Data.ID)
	assert.Equal(t, "Todo List", response.Data.Name)

	mockAI.AssertExpectations(t)
	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_Create_MissingPrompt(t *testing.T) {
	mockProjects, _, mockAI, app := setupProjectTest(t)

	body, _ := json.Marshal(dto.CreateProjectRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockAI.AssertNotCalled(t, "GenerateMetadata")
	mockProjects.AssertNotCalled(t, "Create")
}

func TestProjectHandler_Create_MetadataError(t *testing.T) {
	mockProjects, _, mockAI, app := setupProjectTest(t)

	mockAI.On("GenerateMetadata", mock.Anything, "build something", (*string)(nil)).Return(nil, errors.New("upstream unavailable"))

	body, _ := json.Marshal(dto.CreateProjectRequest{Prompt: "build something"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	mockProjects.AssertNotCalled(t, "Create")
	mockAI.AssertExpectations(t)
}

func TestProjectHandler_List_Success(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	projects := []models.Project{
		{ID: "proj-1", Name: "First"},
		{ID: "proj-2", Name: "Second"},
	}
	mockProjects.On("List", mock.Anything, int64(100), int64(0)).Return(projects, int64(2), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data []models.Project `json:"data"`
		Meta dto.ListMeta     `json:"meta"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Len(t, response.Data, 2)
	assert.Equal(t, int64(2), response.Meta.Count)

	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_Get_NotFound(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	mockProjects.On("Get", mock.Anything, "missing").Return(nil, services.ErrProjectNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/missing", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_Update_InvalidStatus(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	status := "archived"
	mockProjects.On("UpdateMetadata", mock.Anything, "proj-1", services.UpdateProjectParams{Status: &status}).
		Return(nil, services.ErrInvalidStatus)

	body, _ := json.Marshal(dto.UpdateProjectRequest{Status: &status})
	req := httptest.NewRequest(http.MethodPut, "/api/projects/proj-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_Delete_Success(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	mockProjects.On("Delete", mock.Anything, "proj-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/proj-1", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "project deleted", response["message"])

	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_Publish_Success(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	project := &models.Project{ID: "proj-1", Status: models.ProjectStatusPublished}
	mockProjects.On("Publish", mock.Anything, "proj-1").Return(project, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/publish", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data models.Project `json:"data"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, response.Data.Status)

	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_ListPublished_Success(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	projects := []models.Project{{ID: "proj-1", Status: models.ProjectStatusPublished}}
	mockProjects.On("ListPublished", mock.Anything).Return(projects, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/published-projects", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_CreateVersion_Success(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	project := &models.Project{
		ID:             "proj-1",
		CurrentVersion: 2,
		Versions: []models.Version{
			{VersionNumber: 1},
			{VersionNumber: 2, Prompt: "add dark mode", SourceCode: "function App() {}"},
		},
	}
	mockProjects.On("AppendVersion", mock.Anything, "proj-1", "add dark mode", "function App() {}", (*string)(nil)).
		Return(project, nil)

	body, _ := json.Marshal(dto.CreateVersionRequest{Prompt: "add dark mode", SourceCode: "function App() {}"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/versions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response struct {
		Data models.Project `json:"data"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, 2, response.Data.CurrentVersion)

	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_CreateVersion_MissingSource(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	body, _ := json.Marshal(dto.CreateVersionRequest{Prompt: "add dark mode"})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/versions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockProjects.AssertNotCalled(t, "AppendVersion")
}

func TestProjectHandler_SwitchVersion_NotFound(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	mockProjects.On("SwitchVersion", mock.Anything, "proj-1", 9).Return(nil, services.ErrVersionNotFound)

	body, _ := json.Marshal(dto.SwitchVersionRequest{VersionNumber: 9})
	req := httptest.NewRequest(http.MethodPut, "/api/projects/proj-1/versions/current", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_DeleteVersion_CurrentConflict(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	mockProjects.On("DeleteVersion", mock.Anything, "proj-1", 2).Return(nil, services.ErrCurrentVersion)

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/proj-1/versions/2", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "cannot delete the current version", response["error"])

	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_DeleteVersion_LastConflict(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	mockProjects.On("DeleteVersion", mock.Anything, "proj-1", 1).Return(nil, services.ErrLastVersion)

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/proj-1/versions/1", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	mockProjects.AssertExpectations(t)
}

func TestProjectHandler_DeleteVersion_InvalidNumber(t *testing.T) {
	mockProjects, _, _, app := setupProjectTest(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/proj-1/versions/two", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockProjects.AssertNotCalled(t, "DeleteVersion")
}

func TestProjectHandler_Convert_Success(t *testing.T) {
	_, mockApps, _, app := setupProjectTest(t)

	source := "function App() {}"
	projectID := "proj-1"
	converted := &models.App{
		ID:         "app-1",
		Name:       "Todo List",
		Version:    "2",
		Installed:  1,
		SourceCode: &source,
		Status:     "published",
		ProjectID:  &projectID,
	}
	mockApps.On("Convert", mock.Anything, "proj-1", 2, (*float64)(nil)).Return(converted, nil)

	body, _ := json.Marshal(dto.ConvertToAppRequest{Version: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data  models.App        `json:"data"`
		Links map[string]string `json:"links"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "app-1", response.Data.ID)
	assert.Equal(t, "/api/apps/app-1", response.Links["self"])

	mockApps.AssertExpectations(t)
}

func TestProjectHandler_Convert_NoSource(t *testing.T) {
	_, mockApps, _, app := setupProjectTest(t)

	mockApps.On("Convert", mock.Anything, "proj-1", 1, (*float64)(nil)).Return(nil, services.ErrVersionNoSource)

	body, _ := json.Marshal(dto.ConvertToAppRequest{Version: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockApps.AssertExpectations(t)
}
