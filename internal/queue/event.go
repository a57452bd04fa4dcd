// Package queue defines the domain events exchanged over RabbitMQ and the
// consumer that turns them into an audit log.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// QueueName is the durable queue every portal event goes to.
const QueueName = "portal.events"

// Event types.
const (
	AppointmentBooked = "appointment.booked"
	AppointmentPaid   = "appointment.paid"
	UserSaved         = "user.saved"
	UserPromoted      = "user.promoted"
	DoctorAdded       = "doctor.added"
)

// PortalEvent is published after a mutation succeeded. It carries ids and
// emails only; consumers that need the full document read it from the
// database.
type PortalEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Email      string    `json:"email,omitempty"`       // subject of the event (patient, user, doctor)
	ActorEmail string    `json:"actor_email,omitempty"` // verified caller, when known
	ResourceID string    `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps a fresh id and time on an event of type typ.
func NewEvent(typ, email, resourceID string) PortalEvent {
	return PortalEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Email:      email,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	}
}
