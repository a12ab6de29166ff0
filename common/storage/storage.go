package storage

import (
	"context"
	"io"
)

// StorageService defines the object storage operations the service uses.
type StorageService interface {
	// Upload uploads content and returns the object name
	Upload(ctx context.Context, bucket, objectName string, content []byte, contentType string) (string, error)

	// StreamUpload uploads from a reader and returns the object name
	StreamUpload(ctx context.Context, bucket, objectName string, reader io.Reader, contentType string) (string, error)
}
