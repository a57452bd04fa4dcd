package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/doctors-portal/internal/database"
	"github.com/iliyamo/doctors-portal/internal/model"
)

// UserRepo reads and writes the `users` collection, keyed by email.
type UserRepo struct{ Coll *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{Coll: db.Collection(database.UsersCollection)}
}

// GetByEmail fetches the user with the given email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.Coll.FindOne(ctx, bson.M{"email": strings.TrimSpace(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Upsert $sets every field of p onto the document with p's email,
// creating it when absent. Fields present in p overwrite stored ones;
// fields p does not carry are left alone. _id and role are never written
// here; only Promote changes the role.
func (r *UserRepo) Upsert(ctx context.Context, p model.Profile) (model.UpdateResult, error) {
	email := strings.TrimSpace(p.Email())
	if email == "" {
		return model.UpdateResult{}, fmt.Errorf("upsert user: %w", ErrMissingEmail)
	}
	set := bson.M(model.Without(p, model.FieldID, model.FieldRole))
	set[model.FieldEmail] = email
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.Update().SetUpsert(true))
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("upsert user: %w", err)
	}
	return updateResult(res), nil
}

// Promote sets role=admin on the user with email, creating the user
// document when it does not exist yet.
func (r *UserRepo) Promote(ctx context.Context, email string) (model.UpdateResult, error) {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"email": strings.TrimSpace(email)},
		bson.M{"$set": bson.M{model.FieldRole: model.RoleAdmin}},
		options.Update().SetUpsert(true))
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("promote user: %w", err)
	}
	return updateResult(res), nil
}
