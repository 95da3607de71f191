// Package store persists filing artifacts behind a small key-value
// document contract. Two implementations exist: a filesystem store for
// local runs and a Postgres JSONB-backed store for deployments.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that do not exist.
var ErrNotFound = errors.New("store: key not found")

// DocumentStore is the persistence contract. Keys are slash-separated
// paths; List returns every key under a prefix.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
