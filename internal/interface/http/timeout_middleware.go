package httpadapter

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// NewTimeoutMiddleware は、各リクエストの ctx にタイムアウトを付与する。
// - timeout <= 0 の場合は何もしない
// - 既に ctx に deadline がある場合は「より短い方」を優先
//
// 目的：handler/usecase/repo まで ctx deadline を伝播させ、DB 等のブロックを切る
func NewTimeoutMiddleware(logger *zap.Logger, timeout time.Duration) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}

		parent := c.Context()
		if dl, ok := parent.Deadline(); ok && time.Until(dl) <= timeout {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		c.SetContext(ctx)

		err := c.Next()
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("request timeout",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Duration("timeout", timeout),
			)
		}
		return err
	}
}
