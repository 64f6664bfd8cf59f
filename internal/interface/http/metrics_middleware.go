package httpadapter

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

// RequestObserver は 1 リクエスト分の計測値を受け取る（observability.Metrics が実装）。
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

func NewMetricsMiddleware(obs RequestObserver) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		obs.ObserveRequest(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
		return err
	}
}
