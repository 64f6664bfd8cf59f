package httpadapter

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// NewRequestIDMiddleware は X-Request-ID を引き継ぐか新しく振り、ctx とレスポンスヘッダに載せる。
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get(headerRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}

		c.Set(headerRequestID, rid)
		c.SetContext(WithRequestID(c.Context(), rid))
		return c.Next()
	}
}
