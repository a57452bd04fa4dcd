package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers health checks from load balancers and container orchestrators.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Root is the liveness banner the booking site pings.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, "hello doctors portal")
}
