package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/filedepot/filedepot/internal/auth"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = createUserRequest{}
	}
	if req.Email == "" {
		s.sendError(w, http.StatusBadRequest, "Missing email")
		return
	}
	if req.Password == "" {
		s.sendError(w, http.StatusBadRequest, "Missing password")
		return
	}

	user, err := s.credentials.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			s.sendError(w, http.StatusBadRequest, "Already exist")
			return
		}
		s.sendError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.sendJSON(w, http.StatusCreated, userResponse{
		ID:    user.ID.Hex(),
		Email: user.Email,
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		s.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	_, token, err := s.resolver.Authenticate(r.Context(), email, password)
	if err != nil {
		s.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.Logout(r.Context(), r.Header.Get(auth.TokenHeader)); err != nil {
		s.sendError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	s.sendJSON(w, http.StatusOK, userResponse{
		ID:    user.ID.Hex(),
		Email: user.Email,
	})
}
