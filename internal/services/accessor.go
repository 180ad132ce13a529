package services

import (
	"context"
	"encoding/json"

	"github.com/deskos/deskos-api/internal/models"
)

// CollectionAccessor binds a collection name once so callers stop repeating
// it. It carries no state of its own.
type CollectionAccessor struct {
	store      *DocumentService
	collection string
}

func NewCollectionAccessor(store *DocumentService, collection string) *CollectionAccessor {
	return &CollectionAccessor{store: store, collection: collection}
}

func (a *CollectionAccessor) Name() string {
	return a.collection
}

func (a *CollectionAccessor) Create(ctx context.Context, data json.RawMessage) (*models.Document, error) {
	return a.store.Create(ctx, a.collection, data)
}

func (a *CollectionAccessor) Get(ctx context.Context, id string) (*models.Document, error) {
	return a.store.Get(ctx, a.collection, id)
}

func (a *CollectionAccessor) Update(ctx context.Context, id string, data json.RawMessage) (*models.Document, error) {
	return a.store.Update(ctx, a.collection, id, data)
}

func (a *CollectionAccessor) Delete(ctx context.Context, id string) (bool, error) {
	return a.store.Delete(ctx, a.collection, id)
}

func (a *CollectionAccessor) List(ctx context.Context, limit, offset int64) (*models.QueryResult, error) {
	return a.store.List(ctx, a.collection, limit, offset)
}
