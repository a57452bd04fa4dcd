// Package repository holds the MongoDB data access layer. Each repo wraps
// one collection and returns the sentinel errors below so handlers can tell
// a missing document from a broken store.
package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no document matches the lookup.
var ErrNotFound = errors.New("not found")

// ErrMissingEmail is returned when a user document carries no email key.
var ErrMissingEmail = errors.New("missing email")

// ErrInvalidID is returned when a path id is not a valid ObjectID hex string.
var ErrInvalidID = errors.New("invalid id")

// parseID converts a hex id into an ObjectID.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// idString renders a driver-assigned id for JSON responses.
func idString(v interface{}) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	case nil:
		return ""
	}
	return ""
}
