package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AccessLogMiddleware logs method, path, status, latency, bytes sent and
// request ID of every request.
func AccessLogMiddleware(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		status := c.Response().StatusCode()
		reqID, _ := c.Locals("requestid").(string)

		var ev *zerolog.Event
		switch {
		case err != nil || status >= 500:
			ev = log.Error().Err(err)
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ev.Str("method", method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", len(c.Response().Body())).
			Str("request_id", reqID).
			Msg(method + " " + path)

		return err
	}
}
