// Package blob stores canonical image bytes under opaque string keys. The
// registry keys blobs by asset id; an S3 implementation backs the server and
// an in-memory implementation backs tests and the CLI.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("blob not found")

// Store persists byte blobs under opaque keys.
type Store interface {
	// Put stores data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the blob stored under key. Returns ErrNotFound (wrapped)
	// when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
}
