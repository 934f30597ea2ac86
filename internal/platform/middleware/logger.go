package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger emits one structured line per request. Server errors log at error
// level and client errors at warn. Health probes are not logged. Availability
// and booking requests carry their doctor_id and date so a misbehaving
// schedule can be traced per doctor.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if strings.HasPrefix(req.URL.Path, "/health") {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			// The error handler has not run yet, so the response status
			// still reflects the handler, not the mapped error.
			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			var evt *zerolog.Event
			switch {
			case status >= 500:
				evt = logger.Error()
			case status >= 400:
				evt = logger.Warn()
			default:
				evt = logger.Info()
			}
			if err != nil {
				evt = evt.Err(err)
			}

			rid, _ := c.Get("request_id").(string)
			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Int64("bytes_out", c.Response().Size)

			if v := c.QueryParam("doctor_id"); v != "" {
				evt = evt.Str("doctor_id", v)
			}
			if v := c.QueryParam("date"); v != "" {
				evt = evt.Str("date", v)
			}
			if sub, ok := c.Get("auth_subject").(string); ok && sub != "" {
				evt = evt.Str("subject", sub)
			}

			evt.Msg("request")
			return err
		}
	}
}
