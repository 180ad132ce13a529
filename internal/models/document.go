package models

import (
	"encoding/json"
	"time"
)

// Document is the store's atomic unit: an opaque JSON payload inside a named
// collection. The store never interprets Data; the typed registries do.
type Document struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// QueryResult is one page of a collection listing. Count is the total number
// of documents in the collection, not the page size.
type QueryResult struct {
	Documents []Document `json:"documents"`
	Count     int64      `json:"count"`
}
