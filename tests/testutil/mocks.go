package testutil

import (
	"context"
	"encoding/json"

	"github.com/deskos/deskos-api/internal/ai"
	"github.com/deskos/deskos-api/internal/models"
	"github.com/deskos/deskos-api/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockDocumentService mocks the DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, collection string, data json.RawMessage) (*models.Document, error) {
	args := m.Called(ctx, collection, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, collection, id string, data json.RawMessage) (*models.Document, error) {
	args := m.Called(ctx, collection, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, collection, id string) (bool, error) {
	args := m.Called(ctx, collection, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, collection string, limit, offset int64) (*models.QueryResult, error) {
	args := m.Called(ctx, collection, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueryResult), args.Error(1)
}

func (m *MockDocumentService) Collections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentService) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocumentService) Query(ctx context.Context, query string) ([]map[string]any, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, params services.CreateProjectParams) (*models.Project, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, limit, offset int64) ([]models.Project, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectService) ListPublished(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) UpdateMetadata(ctx context.Context, id string, params services.UpdateProjectParams) (*models.Project, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Publish(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) AppendVersion(ctx context.Context, id, prompt, sourceCode string, model *string) (*models.Project, error) {
	args := m.Called(ctx, id, prompt, sourceCode, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) SwitchVersion(ctx context.Context, id string, versionNumber int) (*models.Project, error) {
	args := m.Called(ctx, id, versionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) DeleteVersion(ctx context.Context, id string, versionNumber int) (*models.Project, error) {
	args := m.Called(ctx, id, versionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) ListVersions(ctx context.Context, id string) ([]models.Version, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Version), args.Error(1)
}

// MockAppService mocks the AppService
type MockAppService struct {
	mock.Mock
}

func (m *MockAppService) Create(ctx context.Context, params services.CreateAppParams) (*models.App, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.App), args.Error(1)
}

func (m *MockAppService) Get(ctx context.Context, id string) (*models.App, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.App), args.Error(1)
}

func (m *MockAppService) List(ctx context.Context, installedOnly bool, limit, offset int64) ([]models.App, int64, error) {
	args := m.Called(ctx, installedOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.App), args.Get(1).(int64), args.Error(2)
}

func (m *MockAppService) UpdateSourceCode(ctx context.Context, id, sourceCode string) (*models.App, error) {
	args := m.Called(ctx, id, sourceCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.App), args.Error(1)
}

func (m *MockAppService) Convert(ctx context.Context, projectID string, versionNumber int, price *float64) (*models.App, error) {
	args := m.Called(ctx, projectID, versionNumber, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.App), args.Error(1)
}

// MockDashboardService mocks the DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetLayout(ctx context.Context) (*models.DashboardLayout, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardLayout), args.Error(1)
}

func (m *MockDashboardService) SaveLayout(ctx context.Context, widgets []models.DashboardWidget) (*models.DashboardLayout, error) {
	args := m.Called(ctx, widgets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardLayout), args.Error(1)
}

func (m *MockDashboardService) AddWidget(ctx context.Context, appID string) (*models.DashboardLayout, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardLayout), args.Error(1)
}

func (m *MockDashboardService) RemoveWidget(ctx context.Context, widgetID string) (*models.DashboardLayout, error) {
	args := m.Called(ctx, widgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardLayout), args.Error(1)
}

// MockAIClient mocks the AI client
type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) GenerateMetadata(ctx context.Context, prompt string, model *string) (*ai.AppMetadata, error) {
	args := m.Called(ctx, prompt, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.AppMetadata), args.Error(1)
}

func (m *MockAIClient) StreamApp(ctx context.Context, prompt string, model *string, emit ai.StreamFunc) error {
	args := m.Called(ctx, prompt, model, emit)
	return args.Error(0)
}

func (m *MockAIClient) StreamModification(ctx context.Context, existingCode, modification string, model *string, emit ai.StreamFunc) error {
	args := m.Called(ctx, existingCode, modification, model, emit)
	return args.Error(0)
}

func (m *MockAIClient) ListModels(ctx context.Context) (*ai.ModelList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.ModelList), args.Error(1)
}
