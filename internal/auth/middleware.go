package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/filedepot/filedepot/internal/models"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

type contextKey string

const userContextKey contextKey = "user"

// Middleware returns HTTP middleware that resolves the X-Token header to a
// user and stores it in the request context. Requests that cannot be
// resolved are rejected with 401.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, err := r.AuthenticateByToken(req.Context(), req.Header.Get(TokenHeader))
		if err != nil {
			sendUnauthorized(w)
			return
		}
		ctx := context.WithValue(req.Context(), userContextKey, user)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request context, or nil.
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// WithUser injects a user into a context. Used by tests and by handlers
// that authenticate optionally.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func sendUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
