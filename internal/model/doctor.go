package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Doctor is a profile in the `doctors` collection. Image carries the
// uploaded picture base64 encoded, inline in the document.
type Doctor struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
	Image string             `json:"image" bson:"image"`
}
