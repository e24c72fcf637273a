package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/filedepot/filedepot/internal/logging"
	"github.com/filedepot/filedepot/internal/metrics"
	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/session"
)

// Resolver exchanges credentials for session tokens and resolves tokens
// back to users.
type Resolver struct {
	credentials *Credentials
	sessions    *session.Manager
	store       UserStore
}

// NewResolver creates an identity resolver.
func NewResolver(credentials *Credentials, sessions *session.Manager, store UserStore) *Resolver {
	return &Resolver{
		credentials: credentials,
		sessions:    sessions,
		store:       store,
	}
}

// Authenticate validates an email/password pair and issues a session token.
func (r *Resolver) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := r.credentials.Verify(ctx, email, password)
	if err != nil {
		metrics.RecordAuthAttempt(false)
		return nil, "", err
	}

	token, err := r.sessions.Issue(ctx, user.ID.Hex())
	if err != nil {
		metrics.RecordAuthAttempt(false)
		return nil, "", err
	}

	metrics.RecordAuthAttempt(true)
	logging.Info("session issued", zap.String("user_id", user.ID.Hex()))
	return user, token, nil
}

// AuthenticateByToken resolves a session token to its user. A missing,
// expired, or dangling token yields ErrUnauthorized; a store outage is
// reported as ErrUnauthorized wrapping session.ErrUnavailable so request
// serving fails closed while health reporting stays accurate.
func (r *Resolver) AuthenticateByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	userID, ok, err := r.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			logging.Error("session store unavailable", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := r.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Logout revokes the session token. Idempotent.
func (r *Resolver) Logout(ctx context.Context, token string) error {
	return r.sessions.Revoke(ctx, token)
}
