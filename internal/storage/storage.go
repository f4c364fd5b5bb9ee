package storage

import (
	"context"
	"io"
)

// Package storage contains the object-store mirror used to keep a decoded
// copy of uploaded payloads next to the authoritative database rows.
// Implementations must avoid using local disk and rely on streaming I/O only.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// The mirror only ever writes and removes objects; reads go to the database.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) error
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}
