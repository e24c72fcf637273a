// Package session issues and validates opaque session tokens with TTL,
// backed by a key-value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/filedepot/filedepot/internal/metrics"
)

// ErrUnavailable indicates the backing key-value store could not be
// reached. Callers serving requests must treat it as "unauthenticated";
// it remains distinguishable for health reporting.
var ErrUnavailable = errors.New("session store unavailable")

const keyPrefix = "auth_"

// KV is the minimal key-value contract the session manager needs.
// Implementations map connectivity failures to errors; a missing key is
// (_, false, nil), never an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Manager issues, resolves, and revokes opaque session tokens.
type Manager struct {
	kv  KV
	ttl time.Duration
}

// NewManager creates a session manager with the given token lifetime.
func NewManager(kv KV, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{kv: kv, ttl: ttl}
}

// Issue generates a random opaque token mapping to userID and stores it
// with the configured TTL. UUIDv4 carries 122 bits of randomness, so
// collisions are not retried.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := m.kv.SetEx(ctx, keyPrefix+token, userID, m.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.RecordSessionIssued()
	return token, nil
}

// Resolve returns the user id the token maps to. It does not refresh the
// TTL. The second return is false when the token is unknown or expired.
func (m *Manager) Resolve(ctx context.Context, token string) (string, bool, error) {
	userID, ok, err := m.kv.Get(ctx, keyPrefix+token)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return userID, ok, nil
}

// Revoke deletes the token. Revoking a token that does not exist is not an
// error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if err := m.kv.Del(ctx, keyPrefix+token); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.RecordSessionRevoked()
	return nil
}
