package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/doctors-portal/internal/middleware"
	"github.com/iliyamo/doctors-portal/internal/model"
	"github.com/iliyamo/doctors-portal/internal/queue"
	"github.com/iliyamo/doctors-portal/internal/repository"
	"github.com/iliyamo/doctors-portal/internal/service"
)

// UserHandler serves /users.
type UserHandler struct {
	Store   UserStore
	Events  service.Publisher
	Timeout time.Duration
}

func NewUserHandler(s UserStore, ev service.Publisher, timeout time.Duration) *UserHandler {
	if s == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{Store: s, Events: ev, Timeout: timeout}
}

type adminResp struct {
	Admin bool `json:"admin"`
}

type promoteReq struct {
	Email string `json:"email"`
}

// IsAdmin handles GET /users/:email. Unknown users are simply not admins.
func (h *UserHandler) IsAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Store.GetByEmail(ctx, c.Param("email"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, adminResp{Admin: false})
	}
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	return c.JSON(http.StatusOK, adminResp{Admin: u.IsAdmin()})
}

// Save handles POST /users and PUT /users: upsert keyed by email. Every
// field in the body is written except _id and role; only Promote grants
// roles.
func (h *UserHandler) Save(c echo.Context) error {
	var p model.Profile
	if err := bindBody(c, &p); err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "invalid body")
	}
	email := strings.TrimSpace(p.Email())
	if email == "" {
		return fail(c, http.StatusBadRequest, KindBadRequest, "email is required")
	}
	p = model.Profile(model.Without(p, model.FieldID, model.FieldRole))
	p[model.FieldEmail] = email

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res, err := h.Store.Upsert(ctx, p)
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	service.Notify(c.Request().Context(), h.Events, queue.NewEvent(queue.UserSaved, email, res.UpsertedID))
	return c.JSON(http.StatusOK, res)
}

// Promote handles PUT /users/admin. The caller must present a verified
// identity whose stored role is admin; the target in the body then
// becomes an admin.
func (h *UserHandler) Promote(c echo.Context) error {
	author, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusForbidden, KindForbidden, "you don't have the right to make admin")
	}

	var req promoteReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "invalid body")
	}
	target := strings.TrimSpace(req.Email)
	if target == "" {
		return fail(c, http.StatusBadRequest, KindBadRequest, "email is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	u, err := h.Store.GetByEmail(ctx, author.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, err, KindStorage)
	}
	if err != nil || !u.IsAdmin() {
		return fail(c, http.StatusForbidden, KindForbidden, "only admins can make admins")
	}

	res, err := h.Store.Promote(ctx, target)
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	ev := queue.NewEvent(queue.UserPromoted, target, res.UpsertedID)
	ev.ActorEmail = author.Email
	service.Notify(c.Request().Context(), h.Events, ev)
	return c.JSON(http.StatusOK, res)
}
