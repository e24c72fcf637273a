// Package local provides a local filesystem storage backend.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Config holds local filesystem backend settings.
type Config struct {
	RootPath string
}

// Backend stores blobs as files under a root directory. Each write gets a
// random unique name, so concurrent writes never contend.
type Backend struct {
	rootPath string
}

// New creates a local backend, ensuring the root directory exists.
func New(cfg Config) (*Backend, error) {
	if cfg.RootPath == "" {
		return nil, fmt.Errorf("root path is required")
	}
	if err := os.MkdirAll(cfg.RootPath, 0755); err != nil {
		return nil, fmt.Errorf("create root path %s: %w", cfg.RootPath, err)
	}
	abs, err := filepath.Abs(cfg.RootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve root path %s: %w", cfg.RootPath, err)
	}
	return &Backend{rootPath: abs}, nil
}

// Store writes data under a fresh uuid name and returns the absolute path.
func (b *Backend) Store(_ context.Context, data []byte) (string, error) {
	// MkdirAll is idempotent; re-ensure in case the root was removed.
	if err := os.MkdirAll(b.rootPath, 0755); err != nil {
		return "", fmt.Errorf("ensure root path: %w", err)
	}
	locator := filepath.Join(b.rootPath, uuid.NewString())
	if err := b.writeAtomic(locator, data); err != nil {
		return "", err
	}
	return locator, nil
}

// StoreAt writes data at the exact locator path.
func (b *Backend) StoreAt(_ context.Context, locator string, data []byte) error {
	return b.writeAtomic(locator, data)
}

// Read returns the payload at the locator.
func (b *Backend) Read(_ context.Context, locator string) ([]byte, error) {
	data, err := os.ReadFile(locator)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", locator, err)
	}
	return data, nil
}

// Exists reports whether a file exists at the locator.
func (b *Backend) Exists(_ context.Context, locator string) (bool, error) {
	_, err := os.Stat(locator)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", locator, err)
	}
	return true, nil
}

// Type returns "local".
func (b *Backend) Type() string { return "local" }

// Close is a no-op for local backends.
func (b *Backend) Close() error { return nil }

// writeAtomic writes to a temp file then renames, so a partially written
// blob is never observable through its locator.
func (b *Backend) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".filedepot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}
