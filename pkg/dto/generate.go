package dto

type GenerateRequest struct {
	Prompt string  `json:"prompt"`
	Model  *string `json:"model,omitempty"`
}

type ModifyCodeRequest struct {
	ExistingCode       string  `json:"existing_code"`
	ModificationPrompt string  `json:"modification_prompt"`
	Model              *string `json:"model,omitempty"`
}
