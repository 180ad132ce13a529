package dto

// Response is the wire envelope for every JSON endpoint: the payload under
// data, pagination under meta, and related endpoints under links.
type Response struct {
	Data  any               `json:"data"`
	Meta  any               `json:"meta,omitempty"`
	Links map[string]string `json:"links,omitempty"`
}

type ListMeta struct {
	Count  int64 `json:"count"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}
