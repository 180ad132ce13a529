package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/deskos/deskos-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrAppNotFound     = errors.New("app not found")
	ErrVersionNoSource = errors.New("version has no source code")
)

const (
	appsCollection = "apps"

	AppStatusDraft     = "draft"
	AppStatusPublished = "published"
)

//go:embed templates/notepad.js
var notepadSource string

//go:embed templates/db-viewer.js
var dbViewerSource string

// AppService manages the published-apps registry. Apps are either seeded
// built-ins or snapshots of a project version produced by Convert.
type AppService struct {
	store    *DocumentService
	accessor *CollectionAccessor
}

func NewAppService(store *DocumentService) *AppService {
	return &AppService{
		store:    store,
		accessor: NewCollectionAccessor(store, appsCollection),
	}
}

type CreateAppParams struct {
	Name        string
	Description string
	Version     string
	Price       float64
	Icon        string
	Installed   int
	SourceCode  *string
	Prompt      *string
	Model       *string
	Status      string
}

func (s *AppService) Create(ctx context.Context, params CreateAppParams) (*models.App, error) {
	status := params.Status
	if status == "" {
		status = AppStatusDraft
	}

	app := &models.App{
		Name:        params.Name,
		Description: params.Description,
		Version:     params.Version,
		Price:       params.Price,
		Icon:        params.Icon,
		Installed:   params.Installed,
		SourceCode:  params.SourceCode,
		Prompt:      params.Prompt,
		Model:       params.Model,
		Status:      status,
	}

	payload, err := app.Payload()
	if err != nil {
		return nil, err
	}

	doc, err := s.accessor.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return models.AppFromDocument(doc)
}

func (s *AppService) Get(ctx context.Context, id string) (*models.App, error) {
	doc, err := s.accessor.Get(ctx, id)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, ErrAppNotFound
	}
	if err != nil {
		return nil, err
	}
	return models.AppFromDocument(doc)
}

// List returns one page of apps in insertion order. With installedOnly set
// it narrows to apps whose installed flag is nonzero; apps seeded without
// the flag count as not installed.
func (s *AppService) List(ctx context.Context, installedOnly bool, limit, offset int64) ([]models.App, int64, error) {
	if !installedOnly {
		result, err := s.accessor.List(ctx, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		return s.hydrate(result.Documents, result.Count)
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.db.Pool.Query(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND COALESCE((data ->> 'installed')::int, 0) <> 0
		ORDER BY seq
		LIMIT $2 OFFSET $3
	`, appsCollection, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list installed apps: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan installed app: %w", err)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list installed apps: %w", err)
	}

	var count int64
	err = s.store.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE collection = $1 AND COALESCE((data->>'installed')::int, 0) <> 0
	`, appsCollection).Scan(&count)
	if err != nil {
		return nil, 0, fmt.Errorf("count installed apps: %w", err)
	}

	return s.hydrate(documents, count)
}

func (s *AppService) hydrate(documents []models.Document, count int64) ([]models.App, int64, error) {
	apps := make([]models.App, 0, len(documents))
	for i := range documents {
		app, err := models.AppFromDocument(&documents[i])
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *app)
	}
	return apps, count, nil
}

// UpdateSourceCode replaces an app's source and nothing else.
func (s *AppService) UpdateSourceCode(ctx context.Context, id, sourceCode string) (*models.App, error) {
	tx, err := s.store.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	doc, err := s.store.getForUpdate(ctx, tx, appsCollection, id)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, ErrAppNotFound
	}
	if err != nil {
		return nil, err
	}

	app, err := models.AppFromDocument(doc)
	if err != nil {
		return nil, err
	}
	app.SourceCode = &sourceCode

	payload, err := app.Payload()
	if err != nil {
		return nil, err
	}

	updated, err := s.store.updateTx(ctx, tx, appsCollection, id, payload)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit app update: %w", err)
	}

	s.store.emit(ChangeUpdated, appsCollection, id)
	return models.AppFromDocument(updated)
}

// Convert snapshots a project version into the apps registry. Each project
// maps to at most one app: converting again replaces that app's snapshot
// instead of creating a second listing.
func (s *AppService) Convert(ctx context.Context, projectID string, versionNumber int, price *float64) (*models.App, error) {
	tx, err := s.store.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	projectDoc, err := s.store.getForUpdate(ctx, tx, projectsCollection, projectID)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	project, err := models.ProjectFromDocument(projectDoc)
	if err != nil {
		return nil, err
	}

	version := project.FindVersion(versionNumber)
	if version == nil {
		return nil, ErrVersionNotFound
	}
	if version.SourceCode == "" {
		return nil, ErrVersionNoSource
	}

	existing, err := s.lockAppByProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	projectVersion := versionNumber
	app := &models.App{
		Name:           project.Name,
		Description:    project.Description,
		Version:        strconv.Itoa(versionNumber),
		Icon:           project.Icon,
		Installed:      1,
		SourceCode:     &version.SourceCode,
		Prompt:         &version.Prompt,
		Model:          version.Model,
		Status:         AppStatusPublished,
		ProjectID:      &projectID,
		ProjectVersion: &projectVersion,
	}

	if price != nil {
		app.Price = *price
	} else if existing != nil {
		prev, err := models.AppFromDocument(existing)
		if err != nil {
			return nil, err
		}
		app.Price = prev.Price
	}

	payload, err := app.Payload()
	if err != nil {
		return nil, err
	}

	var doc *models.Document
	op := ChangeCreated
	if existing != nil {
		doc, err = s.store.updateTx(ctx, tx, appsCollection, existing.ID, payload)
		op = ChangeUpdated
	} else {
		doc, err = s.store.createTx(ctx, tx, appsCollection, uuid.NewString(), payload)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit app conversion: %w", err)
	}

	s.store.emit(op, appsCollection, doc.ID)
	return models.AppFromDocument(doc)
}

// lockAppByProject finds and locks the app previously converted from the
// given project, if any.
func (s *AppService) lockAppByProject(ctx context.Context, tx pgx.Tx, projectID string) (*models.Document, error) {
	var doc models.Document
	err := tx.QueryRow(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND data ->> 'project_id' = $2
		ORDER BY seq
		LIMIT 1
		FOR UPDATE
	`, appsCollection, projectID).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock app for project %s: %w", projectID, err)
	}
	return &doc, nil
}

// SeedDefaults inserts the built-in app catalog on an empty apps collection.
// Idempotent: any existing app, seeded or not, skips the whole seed.
func (s *AppService) SeedDefaults(ctx context.Context) error {
	result, err := s.accessor.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if result.Count > 0 {
		return nil
	}

	for _, seed := range defaultApps() {
		payload, err := seed.app.Payload()
		if err != nil {
			return err
		}
		if _, err := s.store.CreateWithID(ctx, appsCollection, seed.id, payload); err != nil {
			return fmt.Errorf("seed app %s: %w", seed.id, err)
		}
	}
	return nil
}

type seededApp struct {
	id  string
	app models.App
}

func defaultApps() []seededApp {
	return []seededApp{
		{id: "notepad", app: models.App{
			Name:        "Notepad",
			Description: "A simple notepad for quick notes and ideas.",
			Version:     "1.0.0",
			Price:       0,
			Icon:        "📝",
			Installed:   1,
			SourceCode:  &notepadSource,
			Status:      AppStatusPublished,
		}},
		{id: "db-viewer", app: models.App{
			Name:        "DB Viewer",
			Description: "Browse and manage your database collections and documents.",
			Version:     "1.0.0",
			Price:       0,
			Icon:        "🗃️",
			Installed:   1,
			SourceCode:  &dbViewerSource,
			Status:      AppStatusPublished,
		}},
		{id: "to-do-list", app: models.App{
			Name:        "To-Do List",
			Description: "Manage your tasks and stay organized.",
			Version:     "1.2.3",
			Price:       2.99,
			Icon:        "✅",
			Status:      AppStatusPublished,
		}},
		{id: "calendar", app: models.App{
			Name:        "Calendar",
			Description: "View and schedule your events easily.",
			Version:     "2.1.0",
			Price:       4.99,
			Icon:        "📅",
			Status:      AppStatusPublished,
		}},
		{id: "chess", app: models.App{
			Name:        "Chess",
			Description: "Play chess and challenge your mind.",
			Version:     "1.8.7",
			Price:       7.50,
			Icon:        "♟️",
			Status:      AppStatusPublished,
		}},
		{id: "file-drive", app: models.App{
			Name:        "File Drive",
			Description: "Store and access your files securely.",
			Version:     "3.0.2",
			Price:       9.99,
			Icon:        "🗂️",
			Status:      AppStatusPublished,
		}},
		{id: "calculator", app: models.App{
			Name:        "Calculator",
			Description: "Perform quick calculations and solve equations.",
			Version:     "2.4.1",
			Price:       1.99,
			Icon:        "🧮",
			Status:      AppStatusPublished,
		}},
		{id: "stocks", app: models.App{
			Name:        "Stocks",
			Description: "Track stock prices and market trends.",
			Version:     "1.5.9",
			Price:       8.99,
			Icon:        "📈",
			Status:      AppStatusPublished,
		}},
	}
}
