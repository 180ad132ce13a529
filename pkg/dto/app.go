package dto

type CreateAppRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Price       float64 `json:"price"`
	Icon        string  `json:"icon"`
	Installed   int     `json:"installed"`
	SourceCode  *string `json:"source_code,omitempty"`
	Prompt      *string `json:"prompt,omitempty"`
	Model       *string `json:"model,omitempty"`
	Status      string  `json:"status,omitempty"`
}

type UpdateAppSourceRequest struct {
	SourceCode string `json:"source_code"`
}
