package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/doctors-portal/internal/model"
	"github.com/iliyamo/doctors-portal/internal/queue"
	"github.com/iliyamo/doctors-portal/internal/service"
)

// DoctorHandler serves /doctors.
type DoctorHandler struct {
	Store         DoctorStore
	Events        service.Publisher
	Timeout       time.Duration
	MaxImageBytes int64
}

func NewDoctorHandler(s DoctorStore, ev service.Publisher, timeout time.Duration, maxImageBytes int64) *DoctorHandler {
	if s == nil {
		panic("nil store passed to NewDoctorHandler")
	}
	return &DoctorHandler{Store: s, Events: ev, Timeout: timeout, MaxImageBytes: maxImageBytes}
}

// List handles GET /doctors.
func (h *DoctorHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	out, err := h.Store.ListAll(ctx)
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles the multipart POST /doctors with fields name, email and
// the file field image. The image is stored inline, base64 encoded.
func (h *DoctorHandler) Create(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(c.FormValue("email"))
	if name == "" || email == "" {
		return fail(c, http.StatusBadRequest, KindBadRequest, "name and email are required")
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "image file is required")
	}
	if h.MaxImageBytes > 0 && fh.Size > h.MaxImageBytes {
		return fail(c, http.StatusRequestEntityTooLarge, KindTooLarge,
			fmt.Sprintf("image exceeds %d bytes", h.MaxImageBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "unreadable image")
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "unreadable image")
	}
	if len(raw) == 0 {
		return fail(c, http.StatusBadRequest, KindBadRequest, "image is empty")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res, err := h.Store.Create(ctx, model.Doctor{
		Name:  name,
		Email: email,
		Image: base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return respondErr(c, err, KindStorage)
	}
	service.Notify(c.Request().Context(), h.Events, queue.NewEvent(queue.DoctorAdded, email, res.InsertedID))
	return c.JSON(http.StatusCreated, res)
}
