package dto

type CreateProjectRequest struct {
	Prompt string  `json:"prompt"`
	Model  *string `json:"model,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type CreateVersionRequest struct {
	Prompt     string  `json:"prompt"`
	SourceCode string  `json:"source_code"`
	Model      *string `json:"model,omitempty"`
}

type SwitchVersionRequest struct {
	VersionNumber int `json:"version_number"`
}

type ConvertToAppRequest struct {
	Version int      `json:"version"`
	Price   *float64 `json:"price,omitempty"`
}
