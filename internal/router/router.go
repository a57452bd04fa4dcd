// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/doctors-portal/internal/auth"
	"github.com/iliyamo/doctors-portal/internal/config"
	"github.com/iliyamo/doctors-portal/internal/handler"
	"github.com/iliyamo/doctors-portal/internal/metrics"
	"github.com/iliyamo/doctors-portal/internal/middleware"
)

// Deps carries everything the routes need. Redis may be nil, which turns
// rate limiting off; a nil Metrics drops the /metrics route.
type Deps struct {
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
	Redis        *redis.Client
	RateLimit    config.RateLimitConfig
	CORSOrigins  []string
	BodyLimit    string
	Verifier     auth.Verifier
	Timeout      time.Duration
	Appointments *handler.AppointmentHandler
	Users        *handler.UserHandler
	Doctors      *handler.DoctorHandler
	Payments     *handler.PaymentHandler
}

// New builds the Echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLog(d.Logger))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderAuth},
	}))
	if d.BodyLimit != "" {
		e.Use(echomw.BodyLimit(d.BodyLimit))
	}
	e.Use(middleware.RateLimit(d.RateLimit, d.Redis))

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes maps the public API. Only PUT /users/admin runs the
// identity middleware.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	e.GET("/appointments", d.Appointments.List)
	e.GET("/appointments/:id", d.Appointments.Get)
	e.POST("/appointments", d.Appointments.Create)
	e.PUT("/appointments/:id", d.Appointments.AttachPayment)

	// static /users/admin wins over /users/:email in Echo's router
	e.PUT("/users/admin", d.Users.Promote, middleware.Identity(d.Verifier, d.Timeout))
	e.GET("/users/:email", d.Users.IsAdmin)
	e.POST("/users", d.Users.Save)
	e.PUT("/users", d.Users.Save)

	e.GET("/doctors", d.Doctors.List)
	e.POST("/doctors", d.Doctors.Create)

	e.POST("/create-payment-intent", d.Payments.CreateIntent)
}
