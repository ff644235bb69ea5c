package storage

import (
	"context"
	"io"
)

// BlobStore defines the object storage operations the ingest pipeline needs.
type BlobStore interface {
	// Upload pushes an object to durable storage under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete removes an object. Used to roll back an upload when the
	// metadata transaction fails.
	Delete(ctx context.Context, key string) error

	// ObjectURL returns the public retrieval locator for a key. It is
	// derived deterministically, without a round trip to the provider.
	ObjectURL(key string) string
}
