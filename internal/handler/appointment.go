package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/doctors-portal/internal/model"
	"github.com/iliyamo/doctors-portal/internal/queue"
	"github.com/iliyamo/doctors-portal/internal/service"
)

// AppointmentHandler serves /appointments.
type AppointmentHandler struct {
	Store   AppointmentStore
	Events  service.Publisher
	Timeout time.Duration
}

func NewAppointmentHandler(s AppointmentStore, ev service.Publisher, timeout time.Duration) *AppointmentHandler {
	if s == nil {
		panic("nil store passed to NewAppointmentHandler")
	}
	return &AppointmentHandler{Store: s, Events: ev, Timeout: timeout}
}

// List handles GET /appointments?email=&date=. The date, when given, is
// normalized to the stored calendar-day form and narrows the result.
func (h *AppointmentHandler) List(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return fail(c, http.StatusBadRequest, KindBadRequest, "email is required")
	}
	day, err := normalizeDay(c.QueryParam("date"))
	if err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "invalid date")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	out, err := h.Store.ListByPatient(ctx, email, day)
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /appointments/:id.
func (h *AppointmentHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	a, err := h.Store.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	return c.JSON(http.StatusOK, a)
}

// Create handles POST /appointments. The body is stored as sent; only a
// client supplied _id is dropped.
func (h *AppointmentHandler) Create(c echo.Context) error {
	var a model.Appointment
	if err := bindBody(c, &a); err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "invalid body")
	}
	email := strings.TrimSpace(a.Email())
	if email == "" {
		return fail(c, http.StatusBadRequest, KindBadRequest, "email is required")
	}
	a[model.FieldEmail] = email

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res, err := h.Store.Create(ctx, a)
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	service.Notify(c.Request().Context(), h.Events, queue.NewEvent(queue.AppointmentBooked, email, res.InsertedID))
	return c.JSON(http.StatusCreated, res)
}

// AttachPayment handles PUT /appointments/:id. The body is the payment
// confirmation, stored whole; unknown appointments are answered with 404.
func (h *AppointmentHandler) AttachPayment(c echo.Context) error {
	var p model.Payment
	if err := bindBody(c, &p); err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "invalid body")
	}
	if p == nil {
		p = model.Payment{}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	id := c.Param("id")
	res, err := h.Store.AttachPayment(ctx, id, p)
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	if service.Enabled(h.Events) {
		service.Notify(c.Request().Context(), h.Events, queue.NewEvent(queue.AppointmentPaid, h.patientEmail(ctx, id), id))
	}
	return c.JSON(http.StatusOK, res)
}

// patientEmail looks up who booked id for the paid event. A failed lookup
// only costs the event its email.
func (h *AppointmentHandler) patientEmail(ctx context.Context, id string) string {
	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("appointment", id).Msg("events: patient lookup failed")
		return ""
	}
	return a.Email()
}
