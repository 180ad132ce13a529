package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/deskos/deskos-api/internal/database"
	"github.com/deskos/deskos-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateDocument inserts a raw document into the given collection
func (f *Fixtures) CreateDocument(t *testing.T, collection string, opts ...DocumentOption) *models.Document {
	t.Helper()
	f.counter++

	doc := &models.Document{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       json.RawMessage(fmt.Sprintf(`{"title": "Test Document %d"}`, f.counter)),
	}

	for _, opt := range opts {
		opt(doc)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO documents (id, collection, data)
		VALUES ($1, $2, $3)
		RETURNING id, collection, data, created_at, updated_at
	`, doc.ID, doc.Collection, doc.Data).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create document: %v", err)
	}

	return doc
}

// DocumentOption configures a test document
type DocumentOption func(*models.Document)

// WithDocumentID sets the document's id
func WithDocumentID(id string) DocumentOption {
	return func(d *models.Document) {
		d.ID = id
	}
}

// WithDocumentData sets the document's payload
func WithDocumentData(data json.RawMessage) DocumentOption {
	return func(d *models.Document) {
		d.Data = data
	}
}

// CreateProject creates a test project with a single version
func (f *Fixtures) CreateProject(t *testing.T, opts ...ProjectOption) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		ID:             uuid.NewString(),
		Name:           fmt.Sprintf("Test Project %d", f.counter),
		Description:    "A project created for testing",
		Icon:           "🧪",
		Status:         models.ProjectStatusDraft,
		CurrentVersion: 1,
		InitialPrompt:  "build a test app",
		Versions: []models.Version{
			{
				ID:            uuid.NewString(),
				VersionNumber: 1,
				Prompt:        "build a test app",
				SourceCode:    "function App() {}\nreturn App;",
			},
		},
	}

	for _, opt := range opts {
		opt(project)
	}

	payload, err := project.Payload()
	if err != nil {
		t.Fatalf("failed to encode project: %v", err)
	}

	doc := f.CreateDocument(t, "projects", WithDocumentID(project.ID), WithDocumentData(payload))
	project.CreatedAt = doc.CreatedAt
	project.UpdatedAt = doc.UpdatedAt

	return project
}

// ProjectOption configures a test project
type ProjectOption func(*models.Project)

// WithProjectName sets the project's name
func WithProjectName(name string) ProjectOption {
	return func(p *models.Project) {
		p.Name = name
	}
}

// WithProjectStatus sets the project's status
func WithProjectStatus(status string) ProjectOption {
	return func(p *models.Project) {
		p.Status = status
	}
}

// WithVersions replaces the project's versions and points at the last one
func WithVersions(versions ...models.Version) ProjectOption {
	return func(p *models.Project) {
		p.Versions = versions
		if len(versions) > 0 {
			p.CurrentVersion = versions[len(versions)-1].VersionNumber
		} else {
			p.CurrentVersion = 0
		}
	}
}

// CreateApp creates a test app
func (f *Fixtures) CreateApp(t *testing.T, opts ...AppOption) *models.App {
	t.Helper()
	f.counter++

	app := &models.App{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("Test App %d", f.counter),
		Description: "An app created for testing",
		Version:     "1.0",
		Icon:        "📦",
		Status:      "published",
	}

	for _, opt := range opts {
		opt(app)
	}

	payload, err := app.Payload()
	if err != nil {
		t.Fatalf("failed to encode app: %v", err)
	}

	doc := f.CreateDocument(t, "apps", WithDocumentID(app.ID), WithDocumentData(payload))
	app.CreatedAt = doc.CreatedAt
	app.UpdatedAt = doc.UpdatedAt

	return app
}

// AppOption configures a test app
type AppOption func(*models.App)

// WithAppName sets the app's name
func WithAppName(name string) AppOption {
	return func(a *models.App) {
		a.Name = name
	}
}

// WithAppInstalled marks the app as installed
func WithAppInstalled() AppOption {
	return func(a *models.App) {
		a.Installed = 1
	}
}

// WithAppProject links the app to a project version
func WithAppProject(projectID string, version int) AppOption {
	return func(a *models.App) {
		a.ProjectID = &projectID
		a.ProjectVersion = &version
	}
}

// WithAppSource sets the app's source code
func WithAppSource(source string) AppOption {
	return func(a *models.App) {
		a.SourceCode = &source
	}
}
