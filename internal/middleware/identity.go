package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/doctors-portal/internal/auth"
)

// HeaderAuth is the header the booking site sends its ID token in.
const HeaderAuth = "auth"

const identityKey = "identity"

// Identity resolves an optional bearer credential into a verified
// identity. Requests without a bearer credential pass through untouched;
// handlers decide whether they need one. A bearer token that fails
// verification stops the request with 401 (or 502 when the keys cannot
// be fetched).
func Identity(v auth.Verifier, timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			id, err := v.VerifyIDToken(ctx, raw)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrVerifierUnavailable), errors.Is(err, context.DeadlineExceeded):
				log.Error().Err(err).Str("request_id", requestID(c)).Msg("identity: verifier unavailable")
				return echo.NewHTTPError(http.StatusBadGateway, "identity verifier unavailable").SetInternal(err)
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token").SetInternal(err)
			}

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// IdentityFrom returns the verified identity attached by Identity, if any.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	if !ok || id.Email == "" {
		return auth.Identity{}, false
	}
	return id, true
}

// bearerToken reads "bearer <token>" from the auth header, falling back
// to Authorization. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(HeaderAuth)
	if h == "" {
		h = r.Header.Get(echo.HeaderAuthorization)
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
