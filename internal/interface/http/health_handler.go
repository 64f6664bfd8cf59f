package httpadapter

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Pinger はストアの疎通確認（domain_todo.Repository が満たす）。
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthPingTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status"`
}

func NewHealthHandler(p Pinger, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), healthPingTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{Status: "unavailable"})
		}
		return c.JSON(healthResponse{Status: "ok"})
	}
}
