// Package auth provides credential verification, token-based identity
// resolution, and the HTTP middleware that enforces it.
package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/filedepot/filedepot/internal/logging"
	"github.com/filedepot/filedepot/internal/models"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password
	// so responses never reveal which field failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers missing, invalid, and expired tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates the email is already registered.
	ErrAlreadyExists = errors.New("email already registered")
)

// UserStore is the metadata-store contract the auth layer needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Credentials wraps password hashing and user lookup over a UserStore.
type Credentials struct {
	store UserStore
}

// NewCredentials creates a credential store adapter.
func NewCredentials(store UserStore) *Credentials {
	return &Credentials{store: store}
}

// Register creates a new user with a hashed password.
func (c *Credentials) Register(ctx context.Context, email, password string) (*models.User, error) {
	existing, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := c.store.CreateUser(ctx, email, string(hashed))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logging.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// Verify checks an email/password pair and returns the matching user.
func (c *Credentials) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
