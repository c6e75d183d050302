package ports

import (
	"context"
	"io"
)

// UploadObject is a file handed to a storage provider.
type UploadObject struct {
	// Key is the provider-relative path, e.g. "uploads/yachts/1700000000000.jpg".
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// StorageProvider stores uploaded media and resolves public URLs.
type StorageProvider interface {
	// Upload stores obj and returns the stored key.
	Upload(ctx context.Context, obj UploadObject) (string, error)
	// Delete removes key. Deleting a missing object succeeds.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the URL clients use to fetch key.
	PublicURL(key string) string
}
