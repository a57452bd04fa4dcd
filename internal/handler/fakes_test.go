package handler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/doctors-portal/internal/model"
	"github.com/iliyamo/doctors-portal/internal/queue"
	"github.com/iliyamo/doctors-portal/internal/repository"
)

var errStoreDown = errors.New("server selection timeout")

type memAppointments struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]model.Appointment
	err   error
	lastQ struct{ email, day string }
}

func newMemAppointments() *memAppointments {
	return &memAppointments{docs: map[primitive.ObjectID]model.Appointment{}}
}

func (m *memAppointments) ListByPatient(_ context.Context, email, day string) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQ.email, m.lastQ.day = email, day
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Appointment{}
	for _, a := range m.docs {
		if a.Email() == email && (day == "" || a[model.FieldDate] == day) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointments) GetByID(_ context.Context, id string) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	a, ok := m.docs[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return model.Appointment(model.Without(a)), nil
}

func (m *memAppointments) Create(_ context.Context, a model.Appointment) (model.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.InsertResult{}, m.err
	}
	oid := primitive.NewObjectID()
	doc := model.Appointment(model.Without(a, model.FieldID))
	doc[model.FieldID] = oid
	m.docs[oid] = doc
	return model.InsertResult{Acknowledged: true, InsertedID: oid.Hex()}, nil
}

func (m *memAppointments) AttachPayment(_ context.Context, id string, p model.Payment) (model.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.UpdateResult{}, m.err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.UpdateResult{}, repository.ErrInvalidID
	}
	a, ok := m.docs[oid]
	if !ok {
		return model.UpdateResult{}, repository.ErrNotFound
	}
	a[model.FieldPayment] = p
	return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type memUsers struct {
	mu       sync.Mutex
	docs     map[string]model.User
	profiles map[string]model.Profile
	err      error
	promoted []string
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{docs: map[string]model.User{}, profiles: map[string]model.Profile{}}
	for _, u := range users {
		m.docs[u.Email] = u
	}
	return m
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.User{}, m.err
	}
	u, ok := m.docs[strings.TrimSpace(email)]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Upsert(_ context.Context, p model.Profile) (model.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.UpdateResult{}, m.err
	}
	email := p.Email()
	cur, ok := m.docs[email]
	cur.Email = email
	if name, _ := p["displayName"].(string); name != "" {
		cur.DisplayName = name
	}
	if role, _ := p[model.FieldRole].(string); role != "" {
		cur.Role = role
	}
	m.docs[email] = cur
	stored := m.profiles[email]
	if stored == nil {
		stored = model.Profile{}
	}
	for k, v := range p {
		stored[k] = v
	}
	m.profiles[email] = stored
	if ok {
		return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return model.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: primitive.NewObjectID().Hex()}, nil
}

func (m *memUsers) Promote(_ context.Context, email string) (model.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.UpdateResult{}, m.err
	}
	m.promoted = append(m.promoted, email)
	u := m.docs[email]
	u.Email = email
	u.Role = model.RoleAdmin
	m.docs[email] = u
	return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type memDoctors struct {
	mu   sync.Mutex
	docs []model.Doctor
	err  error
}

func (m *memDoctors) ListAll(context.Context) ([]model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Doctor{}, m.docs...), nil
}

func (m *memDoctors) Create(_ context.Context, d model.Doctor) (model.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.InsertResult{}, m.err
	}
	d.ID = primitive.NewObjectID()
	m.docs = append(m.docs, d)
	return model.InsertResult{Acknowledged: true, InsertedID: d.ID.Hex()}, nil
}

type fakeProcessor struct {
	price  float64
	secret string
	err    error
}

func (f *fakeProcessor) CreateIntent(_ context.Context, price float64) (string, error) {
	f.price = price
	return f.secret, f.err
}

type recordingEvents struct {
	mu     sync.Mutex
	events []queue.PortalEvent
}

func (r *recordingEvents) Publish(_ context.Context, ev queue.PortalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
