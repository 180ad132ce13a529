package handlers

import (
	"context"
	"errors"

	"github.com/deskos/deskos-api/internal/services"
	"github.com/deskos/deskos-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type AppHandler struct {
	apps   AppServiceInterface
	logger *zap.Logger
}

func NewAppHandler(apps AppServiceInterface, logger *zap.Logger) *AppHandler {
	return &AppHandler{
		apps:   apps,
		logger: logger,
	}
}

func (h *AppHandler) List(c *drift.Context) {
	limit, offset, ok := listParams(c)
	if !ok {
		return
	}

	installed := c.QueryParam("installed")
	installedOnly := installed == "1" || installed == "true"

	apps, count, err := h.apps.List(context.Background(), installedOnly, limit, offset)
	if err != nil {
		h.logger.Error("failed to list apps", zap.Error(err))
		c.InternalServerError("failed to list apps")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data: apps,
		Meta: dto.ListMeta{Count: count, Limit: limit, Offset: offset},
		Links: map[string]string{
			"self":       "/api/apps",
			"collection": "/api/apps",
		},
	})
}

func (h *AppHandler) Get(c *drift.Context) {
	appID := c.Param("appId")

	app, err := h.apps.Get(context.Background(), appID)
	if errors.Is(err, services.ErrAppNotFound) {
		c.NotFound("app not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get app", zap.String("app_id", appID), zap.Error(err))
		c.InternalServerError("failed to get app")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  app,
		Links: map[string]string{"self": "/api/apps/" + appID},
	})
}

func (h *AppHandler) Create(c *drift.Context) {
	var req dto.CreateAppRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	app, err := h.apps.Create(context.Background(), services.CreateAppParams{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
		Price:       req.Price,
		Icon:        req.Icon,
		Installed:   req.Installed,
		SourceCode:  req.SourceCode,
		Prompt:      req.Prompt,
		Model:       req.Model,
		Status:      req.Status,
	})
	if err != nil {
		h.logger.Error("failed to create app", zap.Error(err))
		c.InternalServerError("failed to create app")
		return
	}

	_ = c.JSON(201, dto.Response{
		Data:  app,
		Links: map[string]string{"self": "/api/apps/" + app.ID},
	})
}

func (h *AppHandler) UpdateSource(c *drift.Context) {
	appID := c.Param("appId")

	var req dto.UpdateAppSourceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.SourceCode == "" {
		c.BadRequest("source_code is required")
		return
	}

	app, err := h.apps.UpdateSourceCode(context.Background(), appID, req.SourceCode)
	if errors.Is(err, services.ErrAppNotFound) {
		c.NotFound("app not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update app source", zap.String("app_id", appID), zap.Error(err))
		c.InternalServerError("failed to update app source")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  app,
		Links: map[string]string{"self": "/api/apps/" + appID},
	})
}
