package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Config{RootPath: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestStoreAndRead(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	locator, err := b.Store(ctx, []byte("hello"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !filepath.IsAbs(locator) {
		t.Errorf("locator %q is not absolute", locator)
	}

	data, err := b.Read(ctx, locator)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Read = %q, want hello", data)
	}
}

func TestStoreGeneratesUniqueNames(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	a, _ := b.Store(ctx, []byte("one"))
	c, _ := b.Store(ctx, []byte("two"))
	if a == c {
		t.Error("two stores produced the same locator")
	}
}

func TestStoreRecreatesRoot(t *testing.T) {
	b := newTestBackend(t)
	os.RemoveAll(b.rootPath)

	if _, err := b.Store(context.Background(), []byte("x")); err != nil {
		t.Fatalf("Store after root removal: %v", err)
	}
}

func TestStoreAt(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	locator := filepath.Join(b.rootPath, "base_250")
	if err := b.StoreAt(ctx, locator, []byte("variant")); err != nil {
		t.Fatalf("StoreAt: %v", err)
	}
	data, err := b.Read(ctx, locator)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "variant" {
		t.Errorf("Read = %q, want variant", data)
	}

	// Overwrite in place.
	if err := b.StoreAt(ctx, locator, []byte("v2")); err != nil {
		t.Fatalf("StoreAt overwrite: %v", err)
	}
	data, _ = b.Read(ctx, locator)
	if string(data) != "v2" {
		t.Errorf("Read after overwrite = %q, want v2", data)
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	b := newTestBackend(t)
	b.Store(context.Background(), []byte("x"))
	b.Store(context.Background(), []byte("y"))

	entries, err := os.ReadDir(b.rootPath)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestExists(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	locator, _ := b.Store(ctx, []byte("x"))
	ok, err := b.Exists(ctx, locator)
	if err != nil || !ok {
		t.Errorf("Exists(%q) = (%v, %v), want (true, nil)", locator, ok, err)
	}

	ok, err = b.Exists(ctx, filepath.Join(b.rootPath, "absent"))
	if err != nil || ok {
		t.Errorf("Exists(absent) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestNewRequiresRootPath(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New with empty root path should fail")
	}
}
