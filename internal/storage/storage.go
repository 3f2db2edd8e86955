package storage

import (
	"context"
	"io"
)

// FileStorage defines the interface for object storage operations.
// Attachments are uploaded through the backend (not via presigned URLs)
// because submissions are validated server-side before anything is stored.
type FileStorage interface {
	// Upload stores the object under the given key and returns a resolvable
	// URL for later retrieval.
	Upload(ctx context.Context, objectKey string, contentType string, body io.Reader) (string, error)

	// Download fetches the object previously stored at the given URL.
	Download(ctx context.Context, fileURL string) ([]byte, error)

	// Delete removes the object previously stored at the given URL.
	Delete(ctx context.Context, fileURL string) error
}
