package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// PGStore implements DocumentStore on a single Postgres table. One row per
// key; the payload is stored as bytea so the same store holds both JSON
// reports and raw filing bytes.
//
// Schema assumption (managed elsewhere, migrations or bootstrap SQL):
//
//	CREATE TABLE IF NOT EXISTS filing_documents (
//	  key TEXT PRIMARY KEY,
//	  data BYTEA NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type PGStore struct{}

var _ DocumentStore = (*PGStore)(nil)

// NewPGStore returns a store backed by the shared pool; call InitDB first.
func NewPGStore() *PGStore {
	return &PGStore{}
}

func (s *PGStore) Put(ctx context.Context, key string, data []byte) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO filing_documents (key, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := pool.Exec(ctx, query, key, data, time.Now()); err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, key string) ([]byte, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var data []byte
	err := pool.QueryRow(ctx, `SELECT data FROM filing_documents WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return data, nil
}

func (s *PGStore) Delete(ctx context.Context, key string) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if _, err := pool.Exec(ctx, `DELETE FROM filing_documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, prefix string) ([]string, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx,
		`SELECT key FROM filing_documents WHERE key LIKE $1 || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
