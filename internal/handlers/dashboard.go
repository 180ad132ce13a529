package handlers

import (
	"context"
	"errors"

	"github.com/deskos/deskos-api/internal/models"
	"github.com/deskos/deskos-api/internal/services"
	"github.com/deskos/deskos-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard DashboardServiceInterface
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard DashboardServiceInterface, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

func widgetFromDTO(w dto.DashboardWidget) models.DashboardWidget {
	return models.DashboardWidget{
		ID:       w.ID,
		X:        w.X,
		Y:        w.Y,
		W:        w.W,
		H:        w.H,
		MinW:     w.MinW,
		MinH:     w.MinH,
		MaxW:     w.MaxW,
		MaxH:     w.MaxH,
		NoResize: w.NoResize,
		NoMove:   w.NoMove,
	}
}

func (h *DashboardHandler) GetLayout(c *drift.Context) {
	layout, err := h.dashboard.GetLayout(context.Background())
	if err != nil {
		h.logger.Error("failed to get dashboard layout", zap.Error(err))
		c.InternalServerError("failed to get dashboard layout")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  layout,
		Links: map[string]string{"self": "/api/dashboard/layout"},
	})
}

func (h *DashboardHandler) SaveLayout(c *drift.Context) {
	var req dto.SaveLayoutRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	widgets := make([]models.DashboardWidget, 0, len(req.Widgets))
	for _, w := range req.Widgets {
		if w.ID == "" {
			c.BadRequest("widget id is required")
			return
		}
		widgets = append(widgets, widgetFromDTO(w))
	}

	layout, err := h.dashboard.SaveLayout(context.Background(), widgets)
	if errors.Is(err, services.ErrDuplicateWidget) {
		c.BadRequest("duplicate widget id in layout")
		return
	}
	if err != nil {
		h.logger.Error("failed to save dashboard layout", zap.Error(err))
		c.InternalServerError("failed to save dashboard layout")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  layout,
		Links: map[string]string{"self": "/api/dashboard/layout"},
	})
}

func (h *DashboardHandler) AddWidget(c *drift.Context) {
	var req dto.AddWidgetRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.AppID == "" {
		c.BadRequest("app_id is required")
		return
	}

	layout, err := h.dashboard.AddWidget(context.Background(), req.AppID)
	if errors.Is(err, services.ErrAppNotFound) {
		c.NotFound("app not found")
		return
	}
	if errors.Is(err, services.ErrWidgetExists) {
		_ = c.JSON(409, map[string]string{"error": "widget already on the dashboard"})
		return
	}
	if err != nil {
		h.logger.Error("failed to add widget", zap.String("app_id", req.AppID), zap.Error(err))
		c.InternalServerError("failed to add widget")
		return
	}

	_ = c.JSON(201, dto.Response{
		Data:  layout,
		Links: map[string]string{"self": "/api/dashboard/layout"},
	})
}

func (h *DashboardHandler) RemoveWidget(c *drift.Context) {
	widgetID := c.Param("widgetId")

	layout, err := h.dashboard.RemoveWidget(context.Background(), widgetID)
	if errors.Is(err, services.ErrWidgetNotFound) {
		c.NotFound("widget not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to remove widget", zap.String("widget_id", widgetID), zap.Error(err))
		c.InternalServerError("failed to remove widget")
		return
	}

	_ = c.JSON(200, dto.Response{
		Data:  layout,
		Links: map[string]string{"self": "/api/dashboard/layout"},
	})
}
