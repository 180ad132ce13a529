package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deskos/deskos-api/internal/database"
	"github.com/deskos/deskos-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrQueryNotAllowed  = errors.New("only SELECT queries are allowed")
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change describes one successful mutation of the store.
type Change struct {
	Op         string `json:"op"`
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type ChangeFunc func(Change)

// DocumentService is the document store: schema-agnostic CRUD over JSON
// payloads partitioned by collection name. Collections exist implicitly:
// creating the first document with a new collection name creates the
// collection, deleting the last one removes it.
type DocumentService struct {
	db     *database.DB
	notify ChangeFunc
}

// NewDocumentService creates the store. notify may be nil; when set it is
// invoked after every successful mutation.
func NewDocumentService(db *database.DB, notify ChangeFunc) *DocumentService {
	return &DocumentService{db: db, notify: notify}
}

func (s *DocumentService) emit(op, collection, id string) {
	if s.notify != nil {
		s.notify(Change{Op: op, Collection: collection, ID: id})
	}
}

func (s *DocumentService) Create(ctx context.Context, collection string, data json.RawMessage) (*models.Document, error) {
	return s.CreateWithID(ctx, collection, uuid.NewString(), data)
}

// CreateWithID inserts a document under a caller-chosen id. Used for seeded
// documents whose ids are stable slugs rather than generated uuids.
func (s *DocumentService) CreateWithID(ctx context.Context, collection, id string, data json.RawMessage) (*models.Document, error) {
	if data == nil {
		data = json.RawMessage("{}")
	}

	var doc models.Document
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO documents (id, collection, data)
		VALUES ($1, $2, $3)
		RETURNING id, collection, data, created_at, updated_at
	`, id, collection, data).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create document in %s: %w", collection, err)
	}

	s.emit(ChangeCreated, collection, doc.ID)
	return &doc, nil
}

func (s *DocumentService) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

// Update replaces the whole data payload, it does not merge.
func (s *DocumentService) Update(ctx context.Context, collection, id string, data json.RawMessage) (*models.Document, error) {
	if data == nil {
		data = json.RawMessage("{}")
	}

	var doc models.Document
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE documents
		SET data = $1, updated_at = NOW()
		WHERE collection = $2 AND id = $3
		RETURNING id, collection, data, created_at, updated_at
	`, data, collection, id).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}

	s.emit(ChangeUpdated, collection, doc.ID)
	return &doc, nil
}

// Delete reports whether a document was removed; deleting a missing document
// is not an error.
func (s *DocumentService) Delete(ctx context.Context, collection, id string) (bool, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	s.emit(ChangeDeleted, collection, id)
	return true, nil
}

// List returns one page of a collection in insertion order. Count is the
// collection total regardless of limit, so limit=1 is the cheap way to count.
func (s *DocumentService) List(ctx context.Context, collection string, limit, offset int64) (*models.QueryResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents WHERE collection = $1
		ORDER BY seq
		LIMIT $2 OFFSET $3
	`, collection, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", collection, err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document in %s: %w", collection, err)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", collection, err)
	}

	var count int64
	err = s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = $1`, collection,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count documents in %s: %w", collection, err)
	}

	return &models.QueryResult{Documents: documents, Count: count}, nil
}

// Collections returns every collection name that currently holds at least
// one document, sorted for deterministic output.
func (s *DocumentService) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	collections := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection name: %w", err)
		}
		collections = append(collections, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// Reset drops every document in every collection. TRUNCATE takes an
// exclusive table lock, so it never interleaves with in-flight mutations.
func (s *DocumentService) Reset(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, `TRUNCATE TABLE documents`); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}
	return nil
}

// Query runs a raw read-only SQL statement and returns rows as column-name
// keyed maps. Anything other than SELECT is rejected.
func (s *DocumentService) Query(ctx context.Context, query string) ([]map[string]any, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select") {
		return nil, ErrQueryNotAllowed
	}

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	results := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read query row: %w", err)
		}
		row := make(map[string]any, len(values))
		for i, fd := range rows.FieldDescriptions() {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return results, nil
}

// Transactional variants used by the registries. The registries wrap a
// read-modify-write of a single document in a transaction and lock the row,
// so concurrent mutations of the same document serialize instead of
// clobbering each other.

func (s *DocumentService) begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

func (s *DocumentService) getForUpdate(ctx context.Context, tx pgx.Tx, collection, id string) (*models.Document, error) {
	var doc models.Document
	err := tx.QueryRow(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents WHERE collection = $1 AND id = $2
		FOR UPDATE
	`, collection, id).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock document %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

func (s *DocumentService) createTx(ctx context.Context, tx pgx.Tx, collection, id string, data json.RawMessage) (*models.Document, error) {
	if data == nil {
		data = json.RawMessage("{}")
	}

	var doc models.Document
	err := tx.QueryRow(ctx, `
		INSERT INTO documents (id, collection, data)
		VALUES ($1, $2, $3)
		RETURNING id, collection, data, created_at, updated_at
	`, id, collection, data).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create document in %s: %w", collection, err)
	}
	return &doc, nil
}

func (s *DocumentService) updateTx(ctx context.Context, tx pgx.Tx, collection, id string, data json.RawMessage) (*models.Document, error) {
	var doc models.Document
	err := tx.QueryRow(ctx, `
		UPDATE documents
		SET data = $1, updated_at = NOW()
		WHERE collection = $2 AND id = $3
		RETURNING id, collection, data, created_at, updated_at
	`, data, collection, id).Scan(
		&doc.ID, &doc.Collection, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

func (s *DocumentService) deleteTx(ctx context.Context, tx pgx.Tx, collection, id string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return tag.RowsAffected() > 0, nil
}
