package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DashboardWidget is one grid placement. ID references the app document the
// widget renders; the optional constraint fields are passed through to the
// client grid untouched.
type DashboardWidget struct {
	ID       string `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	W        int    `json:"w"`
	H        int    `json:"h"`
	MinW     *int   `json:"min_w,omitempty"`
	MinH     *int   `json:"min_h,omitempty"`
	MaxW     *int   `json:"max_w,omitempty"`
	MaxH     *int   `json:"max_h,omitempty"`
	NoResize *bool  `json:"no_resize,omitempty"`
	NoMove   *bool  `json:"no_move,omitempty"`
}

// DashboardLayout is the single persisted widget arrangement. UpdatedAt is
// nil until a layout has been saved at least once.
type DashboardLayout struct {
	ID        string            `json:"id"`
	Widgets   []DashboardWidget `json:"widgets"`
	UpdatedAt *time.Time        `json:"updated_at"`
}

type dashboardPayload struct {
	Widgets []DashboardWidget `json:"widgets"`
}

func DashboardLayoutFromDocument(doc *Document) (*DashboardLayout, error) {
	var payload dashboardPayload
	if err := json.Unmarshal(doc.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode dashboard layout %s: %w", doc.ID, err)
	}
	if payload.Widgets == nil {
		payload.Widgets = []DashboardWidget{}
	}
	updatedAt := doc.UpdatedAt
	return &DashboardLayout{
		ID:        doc.ID,
		Widgets:   payload.Widgets,
		UpdatedAt: &updatedAt,
	}, nil
}

func DashboardPayload(widgets []DashboardWidget) (json.RawMessage, error) {
	if widgets == nil {
		widgets = []DashboardWidget{}
	}
	return json.Marshal(dashboardPayload{Widgets: widgets})
}
