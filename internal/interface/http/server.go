// Package httpadapter は Todo API の HTTP 層（fiber）。
package httpadapter

import (
	"time"

	"github.com/gofiber/fiber/v3"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Deps は NewApp に渡す依存。Metrics / TracerProvider は nil 可。
type Deps struct {
	Usecase        todo_usecase.Usecase
	Store          Pinger
	IDStyle        IDStyle
	Logger         *zap.Logger
	Metrics        RequestObserver
	TracerProvider trace.TracerProvider
	RequestTimeout time.Duration
}

// NewApp は middleware とルートを組み立てた fiber.App を返す。
//
// middleware の順序（外 → 内）:
// request id → tracing → metrics → logging → error → recovery → timeout → handler
func NewApp(d Deps) (*fiber.App, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	todoHandler, err := NewTodoHandler(d.Usecase, d.IDStyle)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName: "todo-api",
		// middleware を抜けてきたエラー用の最後の砦
		ErrorHandler: func(c fiber.Ctx, err error) error {
			return writeError(c, logger, err)
		},
	})

	app.Use(NewRequestIDMiddleware())
	app.Use(NewTracingMiddleware(d.TracerProvider))
	if d.Metrics != nil {
		app.Use(NewMetricsMiddleware(d.Metrics))
	}
	app.Use(NewLoggingMiddleware(logger))
	app.Use(NewErrorMiddleware(logger))
	app.Use(NewRecoveryMiddleware(logger))
	app.Use(NewTimeoutMiddleware(logger, d.RequestTimeout))

	if d.Store != nil {
		app.Get("/healthz", NewHealthHandler(d.Store, logger))
	}
	todoHandler.Register(app)

	return app, nil
}
