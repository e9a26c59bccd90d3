// Package storage is the durable key-value layer the budget snapshot and
// UI preferences are written to.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KeyValueAPI stores opaque values under string keys. Get returns ErrNotFound
// for absent keys; Put overwrites.
type KeyValueAPI interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
