// Package blobcache stores downloaded audio bytes keyed by track ID.
//
// The cache holds at most Capacity entries. Inserting a new ID into a full
// cache first evicts the entry that was least recently read or written.
package blobcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	dbutil "github.com/llehouerou/ripple/internal/db"
)

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 20

const (
	appName  = "ripple"
	fileName = "cache.db"
)

// Entry is a cached audio blob.
type Entry struct {
	ID         string
	LastAccess time.Time
	Dataset    map[string]string // track attributes recorded at fetch time
	Blob       []byte
}

// Cache is a persistent LRU blob store.
type Cache struct {
	db       *sql.DB
	capacity int

	// Now returns the current time. Replaceable in tests.
	Now func() time.Time
}

// DefaultPath returns the cache database location under the xdg data dir.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, fileName))
}

// Open opens the cache at path. Use dbutil.Memory for a throwaway cache.
// A capacity below 1 selects DefaultCapacity.
func Open(ctx context.Context, path string, capacity int) (*Cache, error) {
	sqlDB, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{db: sqlDB, capacity: capacity, Now: time.Now}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Set stores blob under id. When id is new and the cache is full, the entry
// with the oldest access time is evicted first.
func (c *Cache) Set(ctx context.Context, id string, dataset map[string]string, blob []byte) error {
	if dataset == nil {
		dataset = map[string]string{}
	}
	encoded, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	now := c.Now().UnixMilli()

	return dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		exists, err := containsTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			var count int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM blobs`).Scan(&count); err != nil {
				return err
			}
			if count >= c.capacity {
				if err := evictOldestTx(ctx, tx); err != nil {
					return fmt.Errorf("evict: %w", err)
				}
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO blobs (id, last_access, dataset, blob)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				last_access = excluded.last_access,
				dataset = excluded.dataset,
				blob = excluded.blob
		`, id, now, string(encoded), blob)
		return err
	})
}

// Get returns the entry for id and refreshes its access time.
// Returns nil, nil on a miss.
func (c *Cache) Get(ctx context.Context, id string) (*Entry, error) {
	var entry *Entry
	now := c.Now()

	err := dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		var dataset string
		var blob []byte
		row := tx.QueryRowContext(ctx, `SELECT dataset, blob FROM blobs WHERE id = ?`, id)
		err := row.Scan(&dataset, &blob)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE blobs SET last_access = ? WHERE id = ?`, now.UnixMilli(), id,
		); err != nil {
			return err
		}

		entry = &Entry{ID: id, LastAccess: time.UnixMilli(now.UnixMilli()), Blob: blob}
		if err := json.Unmarshal([]byte(dataset), &entry.Dataset); err != nil {
			return fmt.Errorf("decode dataset: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Contains reports whether id is cached without touching its access time.
func (c *Cache) Contains(ctx context.Context, id string) (bool, error) {
	var found bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM blobs WHERE id = ?)`, id,
	).Scan(&found)
	return found, err
}

// Remove deletes the entry for id.
func (c *Cache) Remove(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id)
	return err
}

// Clear deletes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM blobs`)
	return err
}

// Keys returns the cached IDs, least recently used first.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id FROM blobs ORDER BY last_access, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		keys = append(keys, id)
	}
	return keys, rows.Err()
}

// Len returns the number of cached entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blobs`).Scan(&count)
	return count, err
}

// Stats reports the number of entries and their total blob size in bytes.
func (c *Cache) Stats(ctx context.Context) (count int, size int64, err error) {
	err = c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(blob)), 0) FROM blobs`,
	).Scan(&count, &size)
	return count, size, err
}

func containsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var found bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM blobs WHERE id = ?)`, id,
	).Scan(&found)
	return found, err
}

func evictOldestTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM blobs WHERE rowid = (
			SELECT rowid FROM blobs ORDER BY last_access, rowid LIMIT 1
		)
	`)
	return err
}
