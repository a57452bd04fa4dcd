package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/doctors-portal/internal/database"
	"github.com/iliyamo/doctors-portal/internal/model"
)

// AppointmentRepo reads and writes the `appointments` collection.
type AppointmentRepo struct{ Coll *mongo.Collection }

func NewAppointmentRepo(db *mongo.Database) *AppointmentRepo {
	return &AppointmentRepo{Coll: db.Collection(database.AppointmentsCollection)}
}

// ListByPatient returns every appointment booked by email. A non-empty
// day restricts the result to that calendar day.
func (r *AppointmentRepo) ListByPatient(ctx context.Context, email, day string) ([]model.Appointment, error) {
	filter := bson.M{model.FieldEmail: email}
	if day != "" {
		filter[model.FieldDate] = day
	}
	cur, err := r.Coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	out := []model.Appointment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return out, nil
}

// GetByID fetches one appointment.
func (r *AppointmentRepo) GetByID(ctx context.Context, id string) (model.Appointment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var a model.Appointment
	err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment %s: %w", id, err)
	}
	return a, nil
}

// Create inserts the booking as given and returns the new id. A client
// supplied _id is discarded so the store always assigns one; a is not
// modified.
func (r *AppointmentRepo) Create(ctx context.Context, a model.Appointment) (model.InsertResult, error) {
	doc := bson.M(model.Without(a, model.FieldID))
	res, err := r.Coll.InsertOne(ctx, doc)
	if err != nil {
		return model.InsertResult{}, fmt.Errorf("insert appointment: %w", err)
	}
	return model.InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}

// AttachPayment sets the payment sub-document to p as sent. Unknown ids
// are rejected with ErrNotFound instead of creating a bare appointment.
func (r *AppointmentRepo) AttachPayment(ctx context.Context, id string, p model.Payment) (model.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return model.UpdateResult{}, err
	}
	res, err := r.Coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{model.FieldPayment: bson.M(p)}})
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("update appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return model.UpdateResult{}, ErrNotFound
	}
	return updateResult(res), nil
}

func updateResult(res *mongo.UpdateResult) model.UpdateResult {
	return model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    idString(res.UpsertedID),
	}
}
