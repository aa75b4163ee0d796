package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"cad-editor/internal/common/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет каждый запрос в структурированный лог. Server errors are
// logged at error level, client errors at warn.
func Logger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if loc := c.Query("location"); loc != "" {
			attrs = append(attrs, "location", loc)
		}
		if sess := c.Query("session"); sess != "" {
			attrs = append(attrs, "session", sess)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}

		switch {
		case status >= 500:
			logger.L().Error("http_request", attrs...)
		case status >= 400:
			logger.L().Warn("http_request", attrs...)
		default:
			logger.L().Info("http_request", attrs...)
		}
		return err
	}
}
