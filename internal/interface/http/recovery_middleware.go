package httpadapter

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// NewRecoveryMiddleware はハンドラの panic を 500 に変換する。
func NewRecoveryMiddleware(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered in http handler",
					zap.Any("panic", r),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.ByteString("stacktrace", debug.Stack()),
				)
				err = fmt.Errorf("panic: %v", r)
			}
		}()

		return c.Next()
	}
}
