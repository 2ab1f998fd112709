package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs one structured line per HTTP request. WebSocket
// upgrades are logged by the session instead.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Sessions log their own lifecycle
		if c.Path() == "/ws" {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()
		path := c.Path()

		// Call next handler
		err := c.Next()

		// Response details
		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		// Set by the requestid middleware registered ahead of this one
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}

		// Level follows the status code; a handler error always logs as error
		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
