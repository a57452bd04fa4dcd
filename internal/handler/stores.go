package handler

import (
	"context"

	"github.com/iliyamo/doctors-portal/internal/model"
)

// AppointmentStore is the part of repository.AppointmentRepo the handlers use.
type AppointmentStore interface {
	ListByPatient(ctx context.Context, email, day string) ([]model.Appointment, error)
	GetByID(ctx context.Context, id string) (model.Appointment, error)
	Create(ctx context.Context, a model.Appointment) (model.InsertResult, error)
	AttachPayment(ctx context.Context, id string, p model.Payment) (model.UpdateResult, error)
}

// UserStore is the part of repository.UserRepo the handlers use.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Upsert(ctx context.Context, p model.Profile) (model.UpdateResult, error)
	Promote(ctx context.Context, email string) (model.UpdateResult, error)
}

// DoctorStore is the part of repository.DoctorRepo the handlers use.
type DoctorStore interface {
	ListAll(ctx context.Context) ([]model.Doctor, error)
	Create(ctx context.Context, d model.Doctor) (model.InsertResult, error)
}
