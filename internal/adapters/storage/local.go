// Package storage implements ports.StorageProvider for uploaded media.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/halayachts/hala-api/internal/ports"
)

// ErrInvalidKey is returned for keys that are absolute or escape the storage root.
var ErrInvalidKey = errors.New("storage: invalid object key")

// LocalProvider writes objects below a directory on disk. Keys map to paths
// relative to the root and are served from "/<key>".
type LocalProvider struct {
	root string
}

var _ ports.StorageProvider = (*LocalProvider)(nil)

// NewLocalProvider returns a provider rooted at dir.
func NewLocalProvider(dir string) *LocalProvider {
	return &LocalProvider{root: filepath.Clean(dir)}
}

// Root returns the directory objects are written under.
func (p *LocalProvider) Root() string { return p.root }

// Upload writes obj atomically: the body goes to a temp file that is renamed into place.
func (p *LocalProvider) Upload(ctx context.Context, obj ports.UploadObject) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := p.resolve(obj.Key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, obj.Body); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		cleanup()
		return "", fmt.Errorf("move upload into place: %w", err)
	}
	return obj.Key, nil
}

// Delete removes key. A missing file is not an error.
func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// PublicURL returns the site-relative URL for key.
func (p *LocalProvider) PublicURL(key string) string {
	return "/" + strings.TrimPrefix(key, "/")
}

func (p *LocalProvider) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || strings.HasPrefix(key, "/") || clean != "/"+key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(p.root, filepath.FromSlash(clean[1:])), nil
}
