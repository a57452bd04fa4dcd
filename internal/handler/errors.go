package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/doctors-portal/internal/auth"
	"github.com/iliyamo/doctors-portal/internal/payment"
	"github.com/iliyamo/doctors-portal/internal/repository"
)

// Error kinds returned in the "error" field of every failed response.
const (
	KindBadRequest       = "bad_request"
	KindUnauthenticated  = "unauthenticated"
	KindForbidden        = "forbidden"
	KindNotFound         = "not_found"
	KindMethodNotAllowed = "method_not_allowed"
	KindTooLarge         = "payload_too_large"
	KindTooManyRequests  = "too_many_requests"
	KindUpstream         = "upstream_failure"
	KindStorage          = "storage_failure"
	KindTimeout          = "timeout"
	KindInternal         = "internal"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// bindBody decodes the request body only. Path and query values never end
// up in stored documents.
func bindBody(c echo.Context, v interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, v)
}

func fail(c echo.Context, status int, kind, msg string) error {
	return c.JSON(status, ErrorBody{Error: kind, Message: msg})
}

// respondErr maps a collaborator error onto a status and kind. fallback
// is the kind used when err is none of the known sentinels, i.e. the
// collaborator itself failed.
func respondErr(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return fail(c, http.StatusBadRequest, KindBadRequest, "invalid id")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, KindNotFound, "not found")
	case errors.Is(err, payment.ErrInvalidAmount):
		return fail(c, http.StatusBadRequest, KindBadRequest, "price must be a positive amount")
	case errors.Is(err, auth.ErrInvalidToken):
		return fail(c, http.StatusUnauthorized, KindUnauthenticated, "invalid bearer token")
	case errors.Is(err, context.DeadlineExceeded):
		logFailure(c, err, KindTimeout)
		return fail(c, http.StatusGatewayTimeout, KindTimeout, "upstream call timed out")
	}

	logFailure(c, err, fallback)
	switch fallback {
	case KindUpstream:
		return fail(c, http.StatusBadGateway, KindUpstream, "payment processor request failed")
	case KindStorage:
		return fail(c, http.StatusServiceUnavailable, KindStorage, "database request failed")
	}
	return fail(c, http.StatusInternalServerError, KindInternal, "internal server error")
}

func logFailure(c echo.Context, err error, kind string) {
	log.Error().Err(err).
		Str("kind", kind).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("route", c.Request().Method+" "+c.Path()).
		Msg("request failed")
}

// kindForStatus names the error kind for framework generated statuses.
func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusMethodNotAllowed:
		return KindMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return KindTooLarge
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	case http.StatusBadGateway:
		return KindUpstream
	case http.StatusServiceUnavailable:
		return KindStorage
	case http.StatusGatewayTimeout:
		return KindTimeout
	}
	return KindInternal
}

// HTTPErrorHandler renders errors that escaped a handler (routing misses,
// middleware rejections, recovered panics) in the ErrorBody shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
		if he.Internal != nil && status >= 500 {
			err = fmt.Errorf("%s: %w", msg, he.Internal)
		}
	}
	if status >= 500 {
		logFailure(c, err, kindForStatus(status))
		if he == nil {
			msg = "internal server error"
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = fail(c, status, kindForStatus(status), msg)
	}
	if werr != nil {
		log.Error().Err(werr).Msg("write error response")
	}
}
