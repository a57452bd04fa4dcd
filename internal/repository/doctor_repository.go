package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/doctors-portal/internal/database"
	"github.com/iliyamo/doctors-portal/internal/model"
)

// DoctorRepo reads and writes the `doctors` collection.
type DoctorRepo struct{ Coll *mongo.Collection }

func NewDoctorRepo(db *mongo.Database) *DoctorRepo {
	return &DoctorRepo{Coll: db.Collection(database.DoctorsCollection)}
}

// ListAll returns every doctor, images included.
func (r *DoctorRepo) ListAll(ctx context.Context) ([]model.Doctor, error) {
	cur, err := r.Coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	out := []model.Doctor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	return out, nil
}

// Create inserts a doctor profile.
func (r *DoctorRepo) Create(ctx context.Context, d model.Doctor) (model.InsertResult, error) {
	d.ID = primitive.NilObjectID
	res, err := r.Coll.InsertOne(ctx, d)
	if err != nil {
		return model.InsertResult{}, fmt.Errorf("insert doctor: %w", err)
	}
	return model.InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}
