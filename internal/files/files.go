// Package files implements the file tree engine: creation, hierarchy
// validation, pagination, visibility, and content resolution.
package files

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/filedepot/filedepot/internal/logging"
	"github.com/filedepot/filedepot/internal/metrics"
	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/storage"
	"github.com/filedepot/filedepot/internal/thumbs"
)

// Validation and lookup errors, resolved at the component boundary.
var (
	ErrMissingName        = errors.New("missing name")
	ErrMissingType        = errors.New("missing type")
	ErrMissingData        = errors.New("missing data")
	ErrParentNotFound     = errors.New("parent not found")
	ErrParentNotAFolder   = errors.New("parent is not a folder")
	ErrNotFound           = errors.New("not found")
	ErrFolderHasNoContent = errors.New("a folder doesn't have content")
)

// Store is the metadata-store contract the engine needs. Lookups return
// (nil, nil) when nothing matches, including when an id fails the 24-hex
// shape check.
type Store interface {
	InsertFile(ctx context.Context, node *models.FileNode) (string, error)
	GetFile(ctx context.Context, id string) (*models.FileNode, error)
	GetFileOwned(ctx context.Context, ownerID, id string) (*models.FileNode, error)
	ListChildren(ctx context.Context, ownerID, parentID string, page int) ([]models.FileNode, error)
	SetVisibility(ctx context.Context, ownerID, id string, isPublic bool) (*models.FileNode, error)
}

// Engine is the file tree engine.
type Engine struct {
	store      Store
	blobs      storage.Backend
	dispatcher thumbs.Dispatcher
}

// NewEngine creates a file tree engine.
func NewEngine(store Store, blobs storage.Backend, dispatcher thumbs.Dispatcher) *Engine {
	return &Engine{
		store:      store,
		blobs:      blobs,
		dispatcher: dispatcher,
	}
}

// CreateRequest carries the validated upload fields. Data holds the
// decoded payload; empty means absent.
type CreateRequest struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     []byte
}

// View is the client-facing rendering of a FileNode. ParentID is the
// number 0 for top-level nodes and the 24-hex id string otherwise.
type View struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID any    `json:"parentId"`
}

// Create validates and persists a new file node for owner. Non-folder
// payloads are written to blob storage before the metadata row exists, so
// a visible node always has readable content. Images additionally get a
// thumbnail job; enqueue failures are logged and never fail the create.
func (e *Engine) Create(ctx context.Context, owner *models.User, req CreateRequest) (*View, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if !models.ValidType(req.Type) {
		return nil, ErrMissingType
	}
	if req.Type != models.TypeFolder && len(req.Data) == 0 {
		return nil, ErrMissingData
	}

	parentID := req.ParentID
	if parentID == "" {
		parentID = models.RootParent
	}
	if parentID != models.RootParent {
		parent, err := e.store.GetFile(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("lookup parent: %w", err)
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotAFolder
		}
		parentID = parent.ID.Hex()
	}

	node := &models.FileNode{
		UserID:   owner.ID,
		Name:     req.Name,
		Type:     req.Type,
		IsPublic: req.IsPublic,
		ParentID: parentID,
	}

	if req.Type != models.TypeFolder {
		locator, err := e.blobs.Store(ctx, req.Data)
		if err != nil {
			metrics.RecordUpload(req.Type, 0, false)
			return nil, fmt.Errorf("store blob: %w", err)
		}
		node.LocalPath = locator
	}

	id, err := e.store.InsertFile(ctx, node)
	if err != nil {
		metrics.RecordUpload(req.Type, 0, false)
		return nil, fmt.Errorf("insert file: %w", err)
	}
	metrics.RecordUpload(req.Type, int64(len(req.Data)), true)

	if req.Type == models.TypeImage {
		job := thumbs.Job{UserID: owner.ID.Hex(), FileID: id}
		if err := e.dispatcher.Enqueue(ctx, job); err != nil {
			// Upload success is independent of thumbnail success.
			logging.Error("thumbnail enqueue failed",
				zap.String("file_id", id), zap.Error(err))
		}
	}

	logging.Info("file created",
		zap.String("file_id", id),
		zap.String("type", req.Type),
		zap.String("user_id", owner.ID.Hex()))

	return nodeView(node), nil
}

// Get returns the node iff it exists and belongs to ownerID. Ownership
// mismatch is indistinguishable from nonexistence.
func (e *Engine) Get(ctx context.Context, ownerID, id string) (*View, error) {
	node, err := e.store.GetFileOwned(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if node == nil {
		return nil, ErrNotFound
	}
	return nodeView(node), nil
}

// List returns one page of children of parentID owned by ownerID, newest
// first. An empty parentID lists the top level.
func (e *Engine) List(ctx context.Context, ownerID, parentID string, page int) ([]*View, error) {
	if parentID == "" {
		parentID = models.RootParent
	}
	nodes, err := e.store.ListChildren(ctx, ownerID, parentID, page)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	views := make([]*View, 0, len(nodes))
	for i := range nodes {
		views = append(views, nodeView(&nodes[i]))
	}
	return views, nil
}

// SetVisibility flips the public flag iff the node exists and belongs to
// ownerID. Idempotent: setting an already-matching flag succeeds.
func (e *Engine) SetVisibility(ctx context.Context, ownerID, id string, isPublic bool) (*View, error) {
	node, err := e.store.SetVisibility(ctx, ownerID, id, isPublic)
	if err != nil {
		return nil, fmt.Errorf("set visibility: %w", err)
	}
	if node == nil {
		return nil, ErrNotFound
	}
	return nodeView(node), nil
}

// Content resolves a node's bytes. requesterID is empty for anonymous
// requests. Folders never have content. Private nodes are served only to
// their owner; everyone else sees NotFound, so existence never leaks. A
// non-empty size selects the derived variant at <locator>_<size>; a
// missing variant is NotFound, never a fallback to the original.
func (e *Engine) Content(ctx context.Context, requesterID, id, size string) ([]byte, string, error) {
	node, err := e.store.GetFile(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	if node == nil {
		return nil, "", ErrNotFound
	}
	if node.IsFolder() {
		return nil, "", ErrFolderHasNoContent
	}
	if !node.IsPublic {
		if requesterID == "" || requesterID != node.UserID.Hex() {
			return nil, "", ErrNotFound
		}
	}

	locator := node.LocalPath
	if size != "" {
		locator = locator + "_" + size
	}

	data, err := e.blobs.Read(ctx, locator)
	if err != nil {
		logging.Debug("content read failed",
			zap.String("file_id", id), zap.Error(err))
		return nil, "", ErrNotFound
	}
	metrics.RecordContentDownload(int64(len(data)))
	return data, node.Name, nil
}

// ParsePage parses a page query parameter. Non-numeric and negative
// values are treated as page 0, never an error.
func ParsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func nodeView(node *models.FileNode) *View {
	var parent any
	if node.ParentID == models.RootParent {
		parent = 0
	} else {
		parent = node.ParentID
	}
	return &View{
		ID:       node.ID.Hex(),
		UserID:   node.UserID.Hex(),
		Name:     node.Name,
		Type:     node.Type,
		IsPublic: node.IsPublic,
		ParentID: parent,
	}
}
