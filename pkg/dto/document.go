package dto

type QueryRequest struct {
	Query string `json:"query"`
}
