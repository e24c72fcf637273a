package mongo

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsValidID reports whether id is exactly 24 hexadecimal characters, the
// shape of a MongoDB object id.
func IsValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ObjectIDOrNil converts id to an ObjectID. Ids failing the shape check
// become the all-zero id so that lookups fail closed as "not found" instead
// of raising a format error.
func ObjectIDOrNil(id string) primitive.ObjectID {
	if !IsValidID(id) {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
