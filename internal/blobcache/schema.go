package blobcache

import (
	"context"
	"database/sql"
)

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blobs (
			id TEXT PRIMARY KEY,
			last_access INTEGER NOT NULL,
			dataset TEXT NOT NULL DEFAULT '{}',
			blob BLOB
		);

		CREATE INDEX IF NOT EXISTS idx_blobs_last_access ON blobs(last_access);
	`)
	return err
}
