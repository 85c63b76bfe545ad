package gcs

import (
	"context"
)

// BlobStore stores whole documents under fixed names.
// This interface enables mocking and testing of remote sync.
type BlobStore interface {
	// PutNamed creates or replaces the blob called name.
	PutNamed(ctx context.Context, name string, data []byte) error

	// GetNamed returns the blob called name, or an error wrapping domain.ErrNotFound.
	GetNamed(ctx context.Context, name string) ([]byte, error)
}
