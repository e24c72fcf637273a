package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/filedepot/filedepot/internal/auth"
	"github.com/filedepot/filedepot/internal/files"
)

// createFileRequest mirrors the upload body. ParentID accepts both the
// number 0 and an id string, matching what clients send back from views.
type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	var req createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.sendError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Payload exceeds %d bytes", s.maxUploadSize))
			return
		}
		req = createFileRequest{}
	}

	var data []byte
	if req.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, "Missing data")
			return
		}
		data = decoded
	}

	view, err := s.engine.Create(r.Context(), user, files.CreateRequest{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: parentIDString(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     data,
	})
	if err != nil {
		s.sendCreateError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	view, err := s.engine.Get(r.Context(), user.ID.Hex(), r.PathValue("id"))
	if err != nil {
		s.sendFileError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, view)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	parentID := r.URL.Query().Get("parentId")
	page := files.ParsePage(r.URL.Query().Get("page"))

	views, err := s.engine.List(r.Context(), user.ID.Hex(), parentID, page)
	if err != nil {
		s.sendFileError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, views)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.setVisibility(w, r, true)
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	s.setVisibility(w, r, false)
}

func (s *Server) setVisibility(w http.ResponseWriter, r *http.Request, public bool) {
	user := auth.GetUser(r.Context())

	view, err := s.engine.SetVisibility(r.Context(), user.ID.Hex(), r.PathValue("id"), public)
	if err != nil {
		s.sendFileError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, view)
}

func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	// Auth is optional here: an unresolvable token degrades to an
	// anonymous request rather than a 401, so public content stays
	// reachable without credentials.
	requesterID := ""
	if token := r.Header.Get(auth.TokenHeader); token != "" {
		if user, err := s.resolver.AuthenticateByToken(r.Context(), token); err == nil {
			requesterID = user.ID.Hex()
		}
	}

	size := r.URL.Query().Get("size")
	data, name, err := s.engine.Content(r.Context(), requesterID, r.PathValue("id"), size)
	if err != nil {
		s.sendFileError(w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// sendCreateError maps engine validation errors onto the upload error
// vocabulary.
func (s *Server) sendCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, files.ErrMissingName):
		s.sendError(w, http.StatusBadRequest, "Missing name")
	case errors.Is(err, files.ErrMissingType):
		s.sendError(w, http.StatusBadRequest, "Missing type")
	case errors.Is(err, files.ErrMissingData):
		s.sendError(w, http.StatusBadRequest, "Missing data")
	case errors.Is(err, files.ErrParentNotFound):
		s.sendError(w, http.StatusBadRequest, "Parent not found")
	case errors.Is(err, files.ErrParentNotAFolder):
		s.sendError(w, http.StatusBadRequest, "Parent is not a folder")
	default:
		s.sendError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) sendFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, files.ErrNotFound):
		s.sendError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, files.ErrFolderHasNoContent):
		s.sendError(w, http.StatusBadRequest, "A folder doesn't have content")
	default:
		s.sendError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parentIDString normalizes the JSON parentId field: absent and numeric 0
// both mean the top level, anything else is taken as an id string.
func parentIDString(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		if p == 0 {
			return ""
		}
		return fmt.Sprintf("%.0f", p)
	default:
		return fmt.Sprintf("%v", p)
	}
}
