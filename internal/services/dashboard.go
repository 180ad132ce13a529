package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/deskos/deskos-api/internal/models"
)

var (
	ErrWidgetExists    = errors.New("widget already on the dashboard")
	ErrWidgetNotFound  = errors.New("widget not found")
	ErrDuplicateWidget = errors.New("duplicate widget id in layout")
)

const (
	dashboardCollection = "dashboard_layout"
	dashboardLayoutID   = "default_layout"

	gridColumns         = 12
	defaultWidgetWidth  = 4
	defaultWidgetHeight = 2
)

// DashboardService stores the single dashboard layout as one document with
// a fixed id. A widget's id is the id of the app it renders, so an app can
// appear on the dashboard at most once.
type DashboardService struct {
	store *DocumentService
}

func NewDashboardService(store *DocumentService) *DashboardService {
	return &DashboardService{store: store}
}

// GetLayout returns the saved layout, or an empty one when nothing has been
// saved yet. It never reports not-found.
func (s *DashboardService) GetLayout(ctx context.Context) (*models.DashboardLayout, error) {
	doc, err := s.store.Get(ctx, dashboardCollection, dashboardLayoutID)
	if errors.Is(err, ErrDocumentNotFound) {
		return &models.DashboardLayout{
			ID:      dashboardLayoutID,
			Widgets: []models.DashboardWidget{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return models.DashboardLayoutFromDocument(doc)
}

// SaveLayout replaces the whole widget arrangement.
func (s *DashboardService) SaveLayout(ctx context.Context, widgets []models.DashboardWidget) (*models.DashboardLayout, error) {
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		if seen[w.ID] {
			return nil, ErrDuplicateWidget
		}
		seen[w.ID] = true
	}

	return s.mutate(ctx, func(layout *models.DashboardLayout) error {
		layout.Widgets = widgets
		return nil
	})
}

// AddWidget places the app on the dashboard at the first free grid slot,
// scanning rows top to bottom and columns left to right.
func (s *DashboardService) AddWidget(ctx context.Context, appID string) (*models.DashboardLayout, error) {
	if _, err := s.store.Get(ctx, appsCollection, appID); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, err
	}

	return s.mutate(ctx, func(layout *models.DashboardLayout) error {
		for _, w := range layout.Widgets {
			if w.ID == appID {
				return ErrWidgetExists
			}
		}

		x, y := findSlot(layout.Widgets, defaultWidgetWidth, defaultWidgetHeight)
		layout.Widgets = append(layout.Widgets, models.DashboardWidget{
			ID: appID,
			X:  x,
			Y:  y,
			W:  defaultWidgetWidth,
			H:  defaultWidgetHeight,
		})
		return nil
	})
}

func (s *DashboardService) RemoveWidget(ctx context.Context, widgetID string) (*models.DashboardLayout, error) {
	return s.mutate(ctx, func(layout *models.DashboardLayout) error {
		kept := make([]models.DashboardWidget, 0, len(layout.Widgets))
		for _, w := range layout.Widgets {
			if w.ID != widgetID {
				kept = append(kept, w)
			}
		}
		if len(kept) == len(layout.Widgets) {
			return ErrWidgetNotFound
		}
		layout.Widgets = kept
		return nil
	})
}

// mutate applies fn to the layout under a row lock, creating the layout
// document on first use.
func (s *DashboardService) mutate(ctx context.Context, fn func(*models.DashboardLayout) error) (*models.DashboardLayout, error) {
	tx, err := s.store.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	layout := &models.DashboardLayout{
		ID:      dashboardLayoutID,
		Widgets: []models.DashboardWidget{},
	}

	doc, err := s.store.getForUpdate(ctx, tx, dashboardCollection, dashboardLayoutID)
	exists := true
	if errors.Is(err, ErrDocumentNotFound) {
		exists = false
	} else if err != nil {
		return nil, err
	} else {
		layout, err = models.DashboardLayoutFromDocument(doc)
		if err != nil {
			return nil, err
		}
	}

	if err := fn(layout); err != nil {
		return nil, err
	}

	payload, err := models.DashboardPayload(layout.Widgets)
	if err != nil {
		return nil, err
	}

	var saved *models.Document
	op := ChangeUpdated
	if exists {
		saved, err = s.store.updateTx(ctx, tx, dashboardCollection, dashboardLayoutID, payload)
	} else {
		saved, err = s.store.createTx(ctx, tx, dashboardCollection, dashboardLayoutID, payload)
		op = ChangeCreated
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dashboard layout: %w", err)
	}

	s.store.emit(op, dashboardCollection, dashboardLayoutID)
	return models.DashboardLayoutFromDocument(saved)
}

// findSlot returns the top-left cell of the first w-by-h region that does
// not overlap any placed widget on a 12 column grid.
func findSlot(widgets []models.DashboardWidget, w, h int) (int, int) {
	for y := 0; ; y++ {
		for x := 0; x+w <= gridColumns; x++ {
			if !overlapsAny(widgets, x, y, w, h) {
				return x, y
			}
		}
	}
}

func overlapsAny(widgets []models.DashboardWidget, x, y, w, h int) bool {
	for _, placed := range widgets {
		if x < placed.X+placed.W && placed.X < x+w &&
			y < placed.Y+placed.H && placed.Y < y+h {
			return true
		}
	}
	return false
}
