package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// RoleAdmin is the only role value the service understands. Any other
// value, or none, means a regular patient account.
const RoleAdmin = "admin"

// User is the part of a `users` document the service reads. Email is the
// natural key; ID is assigned by the store on first upsert.
type User struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	DisplayName string             `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Role        string             `json:"role,omitempty" bson:"role,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Profile is a user document as the client sends it on sign-up or
// profile sync. Every field is written as given except _id and role.
type Profile map[string]interface{}

// Email returns the profile's email, or "".
func (p Profile) Email() string { return stringField(p, FieldEmail) }
