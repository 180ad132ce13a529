package handlers

import (
	"context"
	"encoding/json"

	"github.com/deskos/deskos-api/internal/ai"
	"github.com/deskos/deskos-api/internal/events"
	"github.com/deskos/deskos-api/internal/models"
	"github.com/deskos/deskos-api/internal/services"
)

// DocumentServiceInterface defines the methods used by handlers from DocumentService
type DocumentServiceInterface interface {
	Create(ctx context.Context, collection string, data json.RawMessage) (*models.Document, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	Update(ctx context.Context, collection, id string, data json.RawMessage) (*models.Document, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
	List(ctx context.Context, collection string, limit, offset int64) (*models.QueryResult, error)
	Collections(ctx context.Context) ([]string, error)
	Reset(ctx context.Context) error
	Query(ctx context.Context, query string) ([]map[string]any, error)
}

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	Create(ctx context.Context, params services.CreateProjectParams) (*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, limit, offset int64) ([]models.Project, int64, error)
	ListPublished(ctx context.Context) ([]models.Project, error)
	Delete(ctx context.Context, id string) error
	UpdateMetadata(ctx context.Context, id string, params services.UpdateProjectParams) (*models.Project, error)
	Publish(ctx context.Context, id string) (*models.Project, error)
	AppendVersion(ctx context.Context, id, prompt, sourceCode string, model *string) (*models.Project, error)
	SwitchVersion(ctx context.Context, id string, versionNumber int) (*models.Project, error)
	DeleteVersion(ctx context.Context, id string, versionNumber int) (*models.Project, error)
	ListVersions(ctx context.Context, id string) ([]models.Version, error)
}

// AppServiceInterface defines the methods used by handlers from AppService
type AppServiceInterface interface {
	Create(ctx context.Context, params services.CreateAppParams) (*models.App, error)
	Get(ctx context.Context, id string) (*models.App, error)
	List(ctx context.Context, installedOnly bool, limit, offset int64) ([]models.App, int64, error)
	UpdateSourceCode(ctx context.Context, id, sourceCode string) (*models.App, error)
	Convert(ctx context.Context, projectID string, versionNumber int, price *float64) (*models.App, error)
}

// DashboardServiceInterface defines the methods used by handlers from DashboardService
type DashboardServiceInterface interface {
	GetLayout(ctx context.Context) (*models.DashboardLayout, error)
	SaveLayout(ctx context.Context, widgets []models.DashboardWidget) (*models.DashboardLayout, error)
	AddWidget(ctx context.Context, appID string) (*models.DashboardLayout, error)
	RemoveWidget(ctx context.Context, widgetID string) (*models.DashboardLayout, error)
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *events.Client)
	Unregister(client *events.Client)
}

// AIClientInterface defines the methods used by handlers from the AI client
type AIClientInterface interface {
	GenerateMetadata(ctx context.Context, prompt string, model *string) (*ai.AppMetadata, error)
	StreamApp(ctx context.Context, prompt string, model *string, emit ai.StreamFunc) error
	StreamModification(ctx context.Context, existingCode, modification string, model *string, emit ai.StreamFunc) error
	ListModels(ctx context.Context) (*ai.ModelList, error)
}
