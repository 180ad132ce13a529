package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
)

// Project is a code-generation workspace: an ordered list of immutable
// versions plus a pointer to the active one. CurrentVersion 0 means no code
// has been generated yet.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	Status         string    `json:"status"`
	CurrentVersion int       `json:"current_version"`
	InitialPrompt  string    `json:"initial_prompt"`
	InitialModel   *string   `json:"initial_model,omitempty"`
	Versions       []Version `json:"versions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Version is an immutable snapshot of generated source code together with the
// prompt and model that produced it.
type Version struct {
	ID            string    `json:"id"`
	VersionNumber int       `json:"version_number"`
	Prompt        string    `json:"prompt"`
	SourceCode    string    `json:"source_code"`
	Model         *string   `json:"model,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// projectPayload is the document-data representation of a Project. Identity
// and timestamps belong to the owning document and are not duplicated here.
type projectPayload struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	Status         string    `json:"status"`
	CurrentVersion int       `json:"current_version"`
	InitialPrompt  string    `json:"initial_prompt"`
	InitialModel   *string   `json:"initial_model,omitempty"`
	Versions       []Version `json:"versions"`
}

func ProjectFromDocument(doc *Document) (*Project, error) {
	var payload projectPayload
	if err := json.Unmarshal(doc.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", doc.ID, err)
	}
	if payload.Versions == nil {
		payload.Versions = []Version{}
	}
	return &Project{
		ID:             doc.ID,
		Name:           payload.Name,
		Description:    payload.Description,
		Icon:           payload.Icon,
		Status:         payload.Status,
		CurrentVersion: payload.CurrentVersion,
		InitialPrompt:  payload.InitialPrompt,
		InitialModel:   payload.InitialModel,
		Versions:       payload.Versions,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func (p *Project) Payload() (json.RawMessage, error) {
	versions := p.Versions
	if versions == nil {
		versions = []Version{}
	}
	return json.Marshal(projectPayload{
		Name:           p.Name,
		Description:    p.Description,
		Icon:           p.Icon,
		Status:         p.Status,
		CurrentVersion: p.CurrentVersion,
		InitialPrompt:  p.InitialPrompt,
		InitialModel:   p.InitialModel,
		Versions:       versions,
	})
}

// FindVersion returns the version with the given number, or nil.
func (p *Project) FindVersion(number int) *Version {
	for i := range p.Versions {
		if p.Versions[i].VersionNumber == number {
			return &p.Versions[i]
		}
	}
	return nil
}

// NextVersionNumber is max(existing numbers)+1, so a deleted tail version
// never gets its number reused for different content.
func (p *Project) NextVersionNumber() int {
	max := 0
	for _, v := range p.Versions {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max + 1
}
