// Package storage abstracts the object store holding uploaded files.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under the given key.
var ErrNotFound = errors.New("object not found")

// Store holds raw uploaded files keyed by an opaque reference. The reference
// is persisted on the owning document so a replaced or deleted document can
// remove its file.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
