// Package api provides the HTTP server and handlers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/filedepot/filedepot/internal/auth"
	"github.com/filedepot/filedepot/internal/files"
	"github.com/filedepot/filedepot/internal/logging"
	"github.com/filedepot/filedepot/internal/metrics"
)

// StatStore is the metadata-store surface the status endpoints need.
type StatStore interface {
	Ping(ctx context.Context) error
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
}

// Pinger reports session-store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server.
type Server struct {
	resolver      *auth.Resolver
	credentials   *auth.Credentials
	engine        *files.Engine
	metadata      StatStore
	cache         Pinger
	maxUploadSize int64
}

// NewServer creates a new server.
func NewServer(
	resolver *auth.Resolver,
	credentials *auth.Credentials,
	engine *files.Engine,
	metadata StatStore,
	cache Pinger,
	maxUploadSize int64,
) *Server {
	return &Server{
		resolver:      resolver,
		credentials:   credentials,
		engine:        engine,
		metadata:      metadata,
		cache:         cache,
		maxUploadSize: maxUploadSize,
	}
}

// Handler returns the HTTP handler with auth, logging, and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (no auth required)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /connect", s.handleConnect)

	// Content is public-or-owner; auth is resolved inside the handler.
	mux.HandleFunc("GET /files/{id}/data", s.handleFileContent)

	// Token-protected endpoints
	authed := s.resolver.Middleware
	mux.Handle("GET /disconnect", authed(http.HandlerFunc(s.handleDisconnect)))
	mux.Handle("GET /users/me", authed(http.HandlerFunc(s.handleMe)))
	mux.Handle("POST /files", authed(http.HandlerFunc(s.handleCreateFile)))
	mux.Handle("GET /files", authed(http.HandlerFunc(s.handleListFiles)))
	mux.Handle("GET /files/{id}", authed(http.HandlerFunc(s.handleGetFile)))
	mux.Handle("PUT /files/{id}/publish", authed(http.HandlerFunc(s.handlePublish)))
	mux.Handle("PUT /files/{id}/unpublish", authed(http.HandlerFunc(s.handleUnpublish)))

	return metrics.Middleware(logging.Middleware(mux))
}

// ─── Status ─────────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbUp := s.metadata.Ping(r.Context()) == nil
	cacheUp := s.cache.Ping(r.Context()) == nil
	metrics.SetStoreUp("db", dbUp)
	metrics.SetStoreUp("redis", cacheUp)
	s.sendJSON(w, http.StatusOK, map[string]bool{
		"redis": cacheUp,
		"db":    dbUp,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	users, err := s.metadata.CountUsers(r.Context())
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	fileCount, err := s.metadata.CountFiles(r.Context())
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]int64{
		"users": users,
		"files": fileCount,
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("response encode failed")
	}
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
