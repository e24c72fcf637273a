// Package mongo provides a MongoDB-backed metadata store with metrics.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/filedepot/filedepot/internal/metrics"
	"github.com/filedepot/filedepot/internal/models"
)

// MaxFilesPerPage is the fixed page size for child listings.
const MaxFilesPerPage = 20

// Store is a MongoDB metadata store over the users and files collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the server relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}

	_, err = s.files().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create files index: %w", err)
	}
	return nil
}

func (s *Store) users() *mongo.Collection { return s.db.Collection("users") }
func (s *Store) files() *mongo.Collection { return s.db.Collection("files") }

// CountUsers returns the total number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.users().CountDocuments(ctx, bson.M{})
}

// CountFiles returns the total number of file nodes.
func (s *Store) CountFiles(ctx context.Context) (int64, error) {
	return s.files().CountDocuments(ctx, bson.M{})
}

// CreateUser inserts a new user and returns it with its assigned id.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create_user", time.Since(start)) }()

	user := &models.User{Email: email, Password: passwordHash}
	res, err := s.users().InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

// GetUserByEmail returns the user with the given email, or nil if absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID returns the user with the given id, or nil if absent.
// An id failing the 24-hex shape check matches nothing.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"_id": ObjectIDOrNil(id)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// InsertFile persists a new file node and returns its assigned id.
func (s *Store) InsertFile(ctx context.Context, node *models.FileNode) (string, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_file", time.Since(start)) }()

	res, err := s.files().InsertOne(ctx, node)
	if err != nil {
		return "", fmt.Errorf("insert file: %w", err)
	}
	node.ID = res.InsertedID.(primitive.ObjectID)
	return node.ID.Hex(), nil
}

// GetFile returns the file node with the given id regardless of owner,
// or nil if absent.
func (s *Store) GetFile(ctx context.Context, id string) (*models.FileNode, error) {
	var node models.FileNode
	err := s.files().FindOne(ctx, bson.M{"_id": ObjectIDOrNil(id)}).Decode(&node)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &node, nil
}

// GetFileOwned returns the file node iff it exists and belongs to ownerID,
// or nil otherwise. Ownership mismatch is indistinguishable from absence.
func (s *Store) GetFileOwned(ctx context.Context, ownerID, id string) (*models.FileNode, error) {
	var node models.FileNode
	err := s.files().FindOne(ctx, bson.M{
		"_id":    ObjectIDOrNil(id),
		"userId": ObjectIDOrNil(ownerID),
	}).Decode(&node)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find owned file: %w", err)
	}
	return &node, nil
}

// ListChildren returns up to MaxFilesPerPage children of parentID owned by
// ownerID, newest first, offset by page*MaxFilesPerPage.
func (s *Store) ListChildren(ctx context.Context, ownerID, parentID string, page int) ([]models.FileNode, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_children", time.Since(start)) }()

	filter := bson.M{
		"userId":   ObjectIDOrNil(ownerID),
		"parentId": normalizeParentFilter(parentID),
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(page) * MaxFilesPerPage).
		SetLimit(MaxFilesPerPage)

	cur, err := s.files().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer cur.Close(ctx)

	var nodes []models.FileNode
	if err := cur.All(ctx, &nodes); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	return nodes, nil
}

// SetVisibility updates isPublic on the node iff it exists and belongs to
// ownerID, returning the updated node or nil when no node matched. The
// update is idempotent.
func (s *Store) SetVisibility(ctx context.Context, ownerID, id string, isPublic bool) (*models.FileNode, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("set_visibility", time.Since(start)) }()

	var node models.FileNode
	err := s.files().FindOneAndUpdate(ctx,
		bson.M{"_id": ObjectIDOrNil(id), "userId": ObjectIDOrNil(ownerID)},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&node)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set visibility: %w", err)
	}
	return &node, nil
}

// normalizeParentFilter maps a parentId query value to its stored form:
// the root sentinel stays as-is, anything else must look like an object id
// or it degrades to the unmatchable nil id.
func normalizeParentFilter(parentID string) string {
	if parentID == "" || parentID == models.RootParent {
		return models.RootParent
	}
	return ObjectIDOrNil(parentID).Hex()
}
