package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	// Every collection lives in one table; a collection exists exactly as long
	// as it has at least one document. seq preserves insertion order for
	// pagination, ids are generated application-side.
	`CREATE TABLE IF NOT EXISTS documents (
		seq BIGINT GENERATED ALWAYS AS IDENTITY,
		id TEXT NOT NULL,
		collection TEXT NOT NULL,
		data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_documents_collection_seq ON documents(collection, seq)`,

	// Registries look documents up by payload fields (project_id on apps,
	// status on projects).
	`CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING gin (data jsonb_path_ops)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
