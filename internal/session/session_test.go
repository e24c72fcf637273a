package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeKV is an in-memory KV with an optional forced failure.
type fakeKV struct {
	entries map[string]string
	ttls    map[string]time.Duration
	err     error
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		entries: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeKV) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.entries, key)
	return nil
}

func TestIssueAndResolve(t *testing.T) {
	kv := newFakeKV()
	m := NewManager(kv, time.Hour)

	token, err := m.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}

	userID, ok, err := m.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || userID != "user-1" {
		t.Errorf("Resolve = (%q, %v), want (user-1, true)", userID, ok)
	}

	if ttl := kv.ttls[keyPrefix+token]; ttl != time.Hour {
		t.Errorf("stored TTL = %v, want 1h", ttl)
	}
}

func TestTokensAreUnique(t *testing.T) {
	m := NewManager(newFakeKV(), time.Hour)

	a, _ := m.Issue(context.Background(), "u")
	b, _ := m.Issue(context.Background(), "u")
	if a == b {
		t.Error("two issued tokens are identical")
	}
}

func TestTokensAreNamespaced(t *testing.T) {
	kv := newFakeKV()
	m := NewManager(kv, time.Hour)

	token, _ := m.Issue(context.Background(), "u")
	for key := range kv.entries {
		if !strings.HasPrefix(key, keyPrefix) {
			t.Errorf("stored key %q missing %q prefix", key, keyPrefix)
		}
	}
	if _, ok := kv.entries[keyPrefix+token]; !ok {
		t.Error("token not stored under prefixed key")
	}
}

func TestResolveUnknownToken(t *testing.T) {
	m := NewManager(newFakeKV(), time.Hour)

	_, ok, err := m.Resolve(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("unknown token resolved")
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	kv := newFakeKV()
	m := NewManager(kv, time.Hour)

	token, _ := m.Issue(context.Background(), "u")
	if err := m.Revoke(context.Background(), token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := m.Revoke(context.Background(), token); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if _, ok, _ := m.Resolve(context.Background(), token); ok {
		t.Error("revoked token still resolves")
	}
}

func TestStoreOutageIsUnavailable(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	m := NewManager(kv, time.Hour)

	if _, err := m.Issue(context.Background(), "u"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Issue error = %v, want ErrUnavailable", err)
	}
	if _, _, err := m.Resolve(context.Background(), "t"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Resolve error = %v, want ErrUnavailable", err)
	}
	if err := m.Revoke(context.Background(), "t"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Revoke error = %v, want ErrUnavailable", err)
	}
}

func TestZeroTTLDefaults(t *testing.T) {
	kv := newFakeKV()
	m := NewManager(kv, 0)

	token, _ := m.Issue(context.Background(), "u")
	if ttl := kv.ttls[keyPrefix+token]; ttl != 24*time.Hour {
		t.Errorf("stored TTL = %v, want default 24h", ttl)
	}
}
