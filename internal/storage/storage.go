// Package storage defines the interface for object storage operations.
// Each Storage instance is bound to a single bucket; the service holds one
// for audio and one for cover images, so the two key spaces never mix.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading and removing objects in one bucket.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Remove deletes the given keys. It is best-effort and idempotent:
	// a key that does not exist is a success, and a failure on one key
	// does not stop removal of the others. The first error encountered
	// is returned for logging; callers must not treat it as fatal.
	Remove(ctx context.Context, keys ...string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
