package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/deskos/deskos-api/internal/services"
	"github.com/deskos/deskos-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects ProjectServiceInterface
	apps     AppServiceInterface
	ai       AIClientInterface
	logger   *zap.Logger
}

func NewProjectHandler(projects ProjectServiceInterface, apps AppServiceInterface, aiClient AIClientInterface, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		apps:     apps,
		ai:       aiClient,
		logger:   logger,
	}
}

func (h *ProjectHandler) Create(c *drift.Context) {
	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Prompt == "" {
		c.BadRequest("prompt is required")
		return
	}

	ctx := context.Background()

	metadata, err := h.ai.GenerateMetadata(ctx, req.Prompt, req.Model)
	if err != nil {
		h.logger.Error("failed to generate project metadata", zap.Error(err))
		c.InternalServerError("failed to generate project metadata")
		return
	}

	project, err := h.projects.Create(ctx, services.CreateProjectParams{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Name:        metadata.Name,
		Description: metadata.Description,
		Icon:        metadata.Icon,
	})
	if err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		c.InternalServerError("failed to create project")
		return
	}

	_ = c.JSON(201, dto.Response{
		Data:  project,
		Links: map[string]string{"self": "/api/projects/" + project.ID},
	})
}

func (h *ProjectHandler) List(c *drift.Context) {
	limit, offset, ok := listParams(c)
	if !ok {
		return
	}

	projects, count, err := h.projects.List(context.Background(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		c.InternalServerError("failed to list projects")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: projects,
		Meta: dto.ListMeta{Count: count, Limit: limit, Offset: offset},
		Links: map[string]string{
			"self":        "/api/projects",
			"collections": "/api/db",
		},
	})
}

func (h *ProjectHandler) Get(c *drift.Context) {
	projectID := c.Param("projectId")

	project, err := h.projects.Get(context.Background(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get project", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to get project")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: project,
		Links: map[string]string{
			"self":     "/api/projects/" + projectID,
			"versions": "/api/projects/" + projectID + "/versions",
		},
	})
}

func (h *ProjectHandler) Update(c *drift.Context) {
	projectID := c.Param("projectId")

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	project, err := h.projects.UpdateMetadata(context.Background(), projectID, services.UpdateProjectParams{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Status:      req.Status,
	})
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if errors.Is(err, services.ErrInvalidStatus) {
		c.BadRequest("status must be draft or published")
		return
	}
	if err != nil {
		h.logger.Error("failed to update project", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to update project")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  project,
		Links: map[string]string{"self": "/api/projects/" + projectID},
	})
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	projectID := c.Param("projectId")

	err := h.projects.Delete(context.Background(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete project", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to delete project")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}

func (h *ProjectHandler) Publish(c *drift.Context) {
	projectID := c.Param("projectId")

	project, err := h.projects.Publish(context.Background(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to publish project", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to publish project")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  project,
		Links: map[string]string{"self": "/api/projects/" + projectID},
	})
}

func (h *ProjectHandler) ListPublished(c *drift.Context) {
	projects, err := h.projects.ListPublished(context.Background())
	if err != nil {
		h.logger.Error("failed to list published projects", zap.Error(err))
		c.InternalServerError("failed to list published projects")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  projects,
		Meta:  map[string]int{"count": len(projects)},
		Links: map[string]string{"self": "/api/published-projects"},
	})
}

func (h *ProjectHandler) ListVersions(c *drift.Context) {
	projectID := c.Param("projectId")

	versions, err := h.projects.ListVersions(context.Background(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to list versions", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to list versions")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: versions,
		Meta: map[string]any{"count": len(versions), "project_id": projectID},
		Links: map[string]string{
			"self":    "/api/projects/" + projectID + "/versions",
			"project": "/api/projects/" + projectID,
		},
	})
}

func (h *ProjectHandler) CreateVersion(c *drift.Context) {
	projectID := c.Param("projectId")

	var req dto.CreateVersionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Prompt == "" {
		c.BadRequest("prompt is required")
		return
	}
	if req.SourceCode == "" {
		c.BadRequest("source_code is required")
		return
	}

	project, err := h.projects.AppendVersion(context.Background(), projectID, req.Prompt, req.SourceCode, req.Model)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to create version", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to create version")
		return
	}

	_ = c.JSON(201, dto.Response{
		Data: project,
		Links: map[string]string{
			"self":    "/api/projects/" + projectID + "/versions",
			"project": "/api/projects/" + projectID,
		},
	})
}

func (h *ProjectHandler) SwitchVersion(c *drift.Context) {
	projectID := c.Param("projectId")

	var req dto.SwitchVersionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	project, err := h.projects.SwitchVersion(context.Background(), projectID, req.VersionNumber)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if errors.Is(err, services.ErrVersionNotFound) {
		c.NotFound("version not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to switch version", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to switch version")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  project,
		Links: map[string]string{"self": "/api/projects/" + projectID},
	})
}

func (h *ProjectHandler) DeleteVersion(c *drift.Context) {
	projectID := c.Param("projectId")

	versionNumber, err := strconv.Atoi(c.Param("versionNumber"))
	if err != nil {
		c.BadRequest("invalid version number")
		return
	}

	project, err := h.projects.DeleteVersion(context.Background(), projectID, versionNumber)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if errors.Is(err, services.ErrVersionNotFound) {
		c.NotFound("version not found")
		return
	}
	if errors.Is(err, services.ErrCurrentVersion) {
		_ = c.JSON(409, map[string]string{"error": "cannot delete the current version"})
		return
	}
	if errors.Is(err, services.ErrLastVersion) {
		_ = c.JSON(409, map[string]string{"error": "cannot delete the only version"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete version", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to delete version")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  project,
		Links: map[string]string{"self": "/api/projects/" + projectID},
	})
}

func (h *ProjectHandler) Convert(c *drift.Context) {
	projectID := c.Param("projectId")

	var req dto.ConvertToAppRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	app, err := h.apps.Convert(context.Background(), projectID, req.Version, req.Price)
	if errors.Is(err, services.ErrProjectNotFound) {
		c.NotFound("project not found")
		return
	}
	if errors.Is(err, services.ErrVersionNotFound) {
		c.NotFound("version not found")
		return
	}
	if errors.Is(err, services.ErrVersionNoSource) {
		c.BadRequest("version has no source code")
		return
	}
	if err != nil {
		h.logger.Error("failed to convert project", zap.String("project_id", projectID), zap.Error(err))
		c.InternalServerError("failed to convert project")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: app,
		Links: map[string]string{
			"self":    "/api/apps/" + app.ID,
			"project": "/api/projects/" + projectID,
		},
	})
}
