package storage

import (
	"context"
	"fmt"
	"io"
)

// ObjectStorage stores resume files in a single bucket. Keys are produced by
// ResumeKey; implementations treat them as opaque.
type ObjectStorage interface {
	// EnsureBucket creates the bucket when it is missing and the backend allows it.
	EnsureBucket(ctx context.Context) error
	// Upload writes reader under key. size may be 0 when unknown.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download opens the object; the caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// GetURL returns the public URL of key without contacting the backend.
	GetURL(key string) string
}

// ResumeKey returns the object key for a resume file.
func ResumeKey(resumeID, filename string) string {
	return fmt.Sprintf("resumes/%s/%s", resumeID, filename)
}
