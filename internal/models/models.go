// Package models defines the MongoDB document types shared across the server.
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RootParent is the sentinel parentId meaning "top-level, no parent".
const RootParent = "0"

// FileNode types.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

// ValidType reports whether t is one of the accepted FileNode types.
func ValidType(t string) bool {
	return t == TypeFolder || t == TypeFile || t == TypeImage
}

// User is a registered account. Password holds only the bcrypt hash.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
}

// FileNode represents a folder, file, or image owned by a user.
// ParentID is RootParent for top-level nodes, otherwise the 24-hex id of a
// folder node. LocalPath is the blob locator; empty for folders.
type FileNode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	ParentID  string             `bson:"parentId" json:"parentId"`
	LocalPath string             `bson:"localPath,omitempty" json:"-"`
}

// IsFolder reports whether the node is a folder.
func (f *FileNode) IsFolder() bool {
	return f.Type == TypeFolder
}
