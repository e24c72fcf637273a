// Package storage defines the Backend interface for blob persistence.
package storage

import "context"

// Backend is the interface for blob storage backends. Implementations
// handle raw byte I/O; metadata is handled separately by the document
// store. Locators are opaque, stable strings: an absolute path for the
// local backend, an object key for S3.
type Backend interface {
	// Store writes the payload under a freshly generated unique name and
	// returns its locator. Writes are atomic from a reader's perspective.
	Store(ctx context.Context, data []byte) (string, error)

	// StoreAt writes the payload at an exact locator. Used for derived
	// artifacts placed next to their original.
	StoreAt(ctx context.Context, locator string, data []byte) error

	// Read returns the full payload at the locator.
	Read(ctx context.Context, locator string) ([]byte, error)

	// Exists reports whether a payload exists at the locator.
	Exists(ctx context.Context, locator string) (bool, error)

	// Type returns the backend type identifier ("local", "s3").
	Type() string

	// Close releases any resources held by the backend.
	Close() error
}
