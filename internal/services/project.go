package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deskos/deskos-api/internal/models"
	"github.com/google/uuid"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrVersionNotFound = errors.New("version not found")
	ErrCurrentVersion  = errors.New("cannot delete the current version")
	ErrLastVersion     = errors.New("cannot delete the only version")
	ErrInvalidStatus   = errors.New("status must be draft or published")
)

const projectsCollection = "projects"

// ProjectService is the project/version registry. A project document embeds
// its full version history; every mutation is a locked read-modify-write of
// that one document (see DocumentService.getForUpdate).
type ProjectService struct {
	store    *DocumentService
	accessor *CollectionAccessor
}

func NewProjectService(store *DocumentService) *ProjectService {
	return &ProjectService{
		store:    store,
		accessor: NewCollectionAccessor(store, projectsCollection),
	}
}

type CreateProjectParams struct {
	Prompt      string
	Model       *string
	Name        string
	Description string
	Icon        string
}

type UpdateProjectParams struct {
	Name        *string
	Description *string
	Icon        *string
	Status      *string
}

func (s *ProjectService) Create(ctx context.Context, params CreateProjectParams) (*models.Project, error) {
	project := &models.Project{
		Name:           params.Name,
		Description:    params.Description,
		Icon:           params.Icon,
		Status:         models.ProjectStatusDraft,
		CurrentVersion: 0,
		InitialPrompt:  params.Prompt,
		InitialModel:   params.Model,
		Versions:       []models.Version{},
	}

	payload, err := project.Payload()
	if err != nil {
		return nil, err
	}

	doc, err := s.accessor.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return models.ProjectFromDocument(doc)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	doc, err := s.accessor.Get(ctx, id)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return models.ProjectFromDocument(doc)
}

func (s *ProjectService) List(ctx context.Context, limit, offset int64) ([]models.Project, int64, error) {
	result, err := s.accessor.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	projects := make([]models.Project, 0, len(result.Documents))
	for i := range result.Documents {
		project, err := models.ProjectFromDocument(&result.Documents[i])
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, *project)
	}
	return projects, result.Count, nil
}

// ListPublished returns projects whose status is published, in insertion
// order.
func (s *ProjectService) ListPublished(ctx context.Context) ([]models.Project, error) {
	rows, err := s.store.db.Pool.Query(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND data->>'status' = $2
		ORDER BY seq
	`, projectsCollection, models.ProjectStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("list published projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan published project: %w", err)
		}
		project, err := models.ProjectFromDocument(&doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list published projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	deleted, err := s.accessor.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProjectNotFound
	}
	return nil
}

func (s *ProjectService) UpdateMetadata(ctx context.Context, id string, params UpdateProjectParams) (*models.Project, error) {
	if params.Status != nil &&
		*params.Status != models.ProjectStatusDraft &&
		*params.Status != models.ProjectStatusPublished {
		return nil, ErrInvalidStatus
	}

	return s.mutate(ctx, id, func(project *models.Project) error {
		if params.Name != nil {
			project.Name = *params.Name
		}
		if params.Description != nil {
			project.Description = *params.Description
		}
		if params.Icon != nil {
			project.Icon = *params.Icon
		}
		if params.Status != nil {
			project.Status = *params.Status
		}
		return nil
	})
}

func (s *ProjectService) Publish(ctx context.Context, id string) (*models.Project, error) {
	status := models.ProjectStatusPublished
	return s.UpdateMetadata(ctx, id, UpdateProjectParams{Status: &status})
}

// AppendVersion adds an immutable version and advances the current-version
// pointer. This is the only operation that moves the pointer forward.
func (s *ProjectService) AppendVersion(ctx context.Context, id, prompt, sourceCode string, model *string) (*models.Project, error) {
	return s.mutate(ctx, id, func(project *models.Project) error {
		next := project.NextVersionNumber()
		project.Versions = append(project.Versions, models.Version{
			ID:            uuid.NewString(),
			VersionNumber: next,
			Prompt:        prompt,
			SourceCode:    sourceCode,
			Model:         model,
			CreatedAt:     time.Now().UTC(),
		})
		project.CurrentVersion = next
		return nil
	})
}

// SwitchVersion points the project at an existing version without touching
// the version list.
func (s *ProjectService) SwitchVersion(ctx context.Context, id string, versionNumber int) (*models.Project, error) {
	return s.mutate(ctx, id, func(project *models.Project) error {
		if project.FindVersion(versionNumber) == nil {
			return ErrVersionNotFound
		}
		project.CurrentVersion = versionNumber
		return nil
	})
}

// DeleteVersion removes a version. The current version and the only
// remaining version are protected, so the pointer always resolves.
func (s *ProjectService) DeleteVersion(ctx context.Context, id string, versionNumber int) (*models.Project, error) {
	return s.mutate(ctx, id, func(project *models.Project) error {
		if project.FindVersion(versionNumber) == nil {
			return ErrVersionNotFound
		}
		if len(project.Versions) == 1 {
			return ErrLastVersion
		}
		if versionNumber == project.CurrentVersion {
			return ErrCurrentVersion
		}

		kept := make([]models.Version, 0, len(project.Versions)-1)
		for _, v := range project.Versions {
			if v.VersionNumber != versionNumber {
				kept = append(kept, v)
			}
		}
		project.Versions = kept
		return nil
	})
}

func (s *ProjectService) ListVersions(ctx context.Context, id string) ([]models.Version, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return project.Versions, nil
}

// mutate runs fn against the project under a row lock and persists the
// result, so concurrent mutations of the same project serialize.
func (s *ProjectService) mutate(ctx context.Context, id string, fn func(*models.Project) error) (*models.Project, error) {
	tx, err := s.store.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	doc, err := s.store.getForUpdate(ctx, tx, projectsCollection, id)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	project, err := models.ProjectFromDocument(doc)
	if err != nil {
		return nil, err
	}

	if err := fn(project); err != nil {
		return nil, err
	}

	payload, err := project.Payload()
	if err != nil {
		return nil, err
	}

	updated, err := s.store.updateTx(ctx, tx, projectsCollection, id, payload)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit project update: %w", err)
	}

	s.store.emit(ChangeUpdated, projectsCollection, id)
	return models.ProjectFromDocument(updated)
}
