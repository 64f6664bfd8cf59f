package httpadapter

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.uber.org/zap"
)

// クライアントに返す固定メッセージ。内部の詳細はログにだけ残す。
const (
	msgNotFound    = "ToDo item not found"
	msgUnavailable = "storage unavailable"
	msgTimeout     = "request timeout"
	msgInternal    = "internal error"
)

// errorBody は {"detail": ...}。detail は文字列か []FieldError。
type errorBody struct {
	Detail any `json:"detail"`
}

type httpError struct {
	status int
	body   errorBody
}

// --- error mapper ---
func toHTTPError(err error) httpError {
	var ve *ValidationError
	var fe *fiber.Error

	switch {
	case errors.As(err, &ve):
		return httpError{fiber.StatusUnprocessableEntity, errorBody{ve.Fields}}

	case errors.Is(err, todo_usecase.ErrEmptyTitle):
		return httpError{fiber.StatusUnprocessableEntity, errorBody{[]FieldError{{
			Loc:  []string{"body", "title"},
			Msg:  "String should have at least 1 character",
			Type: "minLength",
		}}}}

	case errors.Is(err, todo_usecase.ErrNotFound):
		return httpError{fiber.StatusNotFound, errorBody{msgNotFound}}

	case errors.Is(err, todo_usecase.ErrUnavailable):
		return httpError{fiber.StatusServiceUnavailable, errorBody{msgUnavailable}}

	case errors.Is(err, context.DeadlineExceeded):
		return httpError{fiber.StatusGatewayTimeout, errorBody{msgTimeout}}

	case errors.As(err, &fe):
		// ルーティング由来（404 / 405 など）
		return httpError{fe.Code, errorBody{fe.Message}}

	default:
		return httpError{fiber.StatusInternalServerError, errorBody{msgInternal}}
	}
}

// writeError はハンドラが返したエラーをレスポンスに変換する。
// 5xx のときだけ元エラーを error レベルで残す。
func writeError(c fiber.Ctx, logger *zap.Logger, err error) error {
	he := toHTTPError(err)
	if he.status >= fiber.StatusInternalServerError {
		rid, _ := RequestIDFromContext(c.Context())
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", he.status),
			zap.String("request_id", rid),
			zap.Error(err),
		)
	}
	return c.Status(he.status).JSON(he.body)
}

// NewErrorMiddleware はチェーン内側で発生したエラーをここでレスポンス化する。
// ログ・メトリクス・トレースのミドルウェアより内側に置くと、確定したステータスを観測できる。
func NewErrorMiddleware(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		return writeError(c, logger, err)
	}
}
