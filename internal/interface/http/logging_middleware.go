package httpadapter

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// NewLoggingMiddleware logs each request with method, route, status, duration and request_id.
func NewLoggingMiddleware(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", c.Route().Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		}
		if rid, ok := RequestIDFromContext(c.Context()); ok {
			fields = append(fields, zap.String("request_id", rid))
		}

		switch {
		case err != nil:
			logger.Error("http request", append(fields, zap.Error(err))...)
		case status >= fiber.StatusInternalServerError:
			logger.Error("http request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}

		return err
	}
}
