// Package httpapi is the HTTP edge of the converter: routing, option
// extraction, multipart handling and response framing. The streaming
// semantics live in the root csvjson package; this layer only decides what
// can still become a clean error response (anything before the first output
// chunk) and what cannot (anything after).
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	csvjson "github.com/reoring/csvjson"
)

// New builds the echo server. POST / converts a CSV body (raw or multipart)
// into a streamed JSON array; GET /healthz answers liveness probes.
func New(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger(), middleware.Recover())

	h := &handler{cfg: cfg}
	e.POST("/", h.convert)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

// errorPayload shapes Issues for JSON error responses.
func errorPayload(iss csvjson.Issues) map[string]any {
	return map[string]any{"issues": iss}
}
