package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// App is an installable artifact in the store. SourceCode is a frozen copy
// taken from a project version at conversion time; built-in apps have none.
// Version is a free-form label, independent of project version numbering.
type App struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Version        string    `json:"version"`
	Price          float64   `json:"price"`
	Icon           string    `json:"icon"`
	Installed      int       `json:"installed"`
	SourceCode     *string   `json:"source_code,omitempty"`
	Prompt         *string   `json:"prompt,omitempty"`
	Model          *string   `json:"model,omitempty"`
	Status         string    `json:"status"`
	ProjectID      *string   `json:"project_id,omitempty"`
	ProjectVersion *int      `json:"project_version,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type appPayload struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Version        string  `json:"version"`
	Price          float64 `json:"price"`
	Icon           string  `json:"icon"`
	Installed      int     `json:"installed"`
	SourceCode     *string `json:"source_code,omitempty"`
	Prompt         *string `json:"prompt,omitempty"`
	Model          *string `json:"model,omitempty"`
	Status         string  `json:"status"`
	ProjectID      *string `json:"project_id,omitempty"`
	ProjectVersion *int    `json:"project_version,omitempty"`
}

func AppFromDocument(doc *Document) (*App, error) {
	var payload appPayload
	if err := json.Unmarshal(doc.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode app %s: %w", doc.ID, err)
	}
	return &App{
		ID:             doc.ID,
		Name:           payload.Name,
		Description:    payload.Description,
		Version:        payload.Version,
		Price:          payload.Price,
		Icon:           payload.Icon,
		Installed:      payload.Installed,
		SourceCode:     payload.SourceCode,
		Prompt:         payload.Prompt,
		Model:          payload.Model,
		Status:         payload.Status,
		ProjectID:      payload.ProjectID,
		ProjectVersion: payload.ProjectVersion,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func (a *App) Payload() (json.RawMessage, error) {
	return json.Marshal(appPayload{
		Name:           a.Name,
		Description:    a.Description,
		Version:        a.Version,
		Price:          a.Price,
		Icon:           a.Icon,
		Installed:      a.Installed,
		SourceCode:     a.SourceCode,
		Prompt:         a.Prompt,
		Model:          a.Model,
		Status:         a.Status,
		ProjectID:      a.ProjectID,
		ProjectVersion: a.ProjectVersion,
	})
}
