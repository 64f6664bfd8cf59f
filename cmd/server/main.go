package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/hijjiri/todo-api/internal/config"
	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"github.com/hijjiri/todo-api/internal/infrastructure/memory"
	"github.com/hijjiri/todo-api/internal/infrastructure/sqlstore"
	grpcadapter "github.com/hijjiri/todo-api/internal/interface/grpc"
	httpadapter "github.com/hijjiri/todo-api/internal/interface/http"
	"github.com/hijjiri/todo-api/internal/observability"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "todo-api"

//----------------------
// CLI
//----------------------

type flags struct {
	configPath string
	store      string
	httpAddr   string
	dbDriver   string
}

func newRootCmd() *cobra.Command {
	var f flags

	serve := func(cmd *cobra.Command, args []string) error {
		return run(cmd, f)
	}

	root := &cobra.Command{
		Use:           "todo-server",
		Short:         "ToDo HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		// サブコマンド省略時は serve と同じ
		RunE: serve,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", os.Getenv("TODO_CONFIG"), "path to a YAML config file")
	pf.StringVar(&f.store, "store", "", "storage backend: memory | sql")
	pf.StringVar(&f.httpAddr, "http-addr", "", "HTTP listen address")
	pf.StringVar(&f.dbDriver, "db-driver", "", "sql dialect: mysql | postgres | sqlite")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the ToDo HTTP API",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//----------------------
// run
//----------------------

func run(cmd *cobra.Command, f flags) error {
	// ---- 起動用 Logger（設定を読むまでの間だけ使う）----
	bootLogger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// ---- Config 読み込み ----
	cfg, err := config.Load(f.configPath, bootLogger)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = f.store
	}
	if cmd.Flags().Changed("http-addr") {
		cfg.HTTPAddr = f.httpAddr
	}
	if cmd.Flags().Changed("db-driver") {
		cfg.DB.Driver = f.dbDriver
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	_ = bootLogger.Sync()

	// ---- Logger ----
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("loaded config",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("grpc_health_addr", cfg.GRPCHealthAddr),
		zap.String("store", cfg.Store),
		zap.String("db_driver", cfg.DB.Driver),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("tracing", cfg.Tracing),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Tracing ----
	tp, shutdownTracing, err := observability.SetupTracing(cfg.Tracing, os.Stdout, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// ---- Store ----
	repo, ids, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ---- Metrics ----
	metrics := observability.NewMetrics()

	// ---- HTTP (fiber) ----
	uc := todo_usecase.New(repo, logger)
	app, err := httpadapter.NewApp(httpadapter.Deps{
		Usecase:        uc,
		Store:          repo,
		IDStyle:        ids,
		Logger:         logger,
		Metrics:        metrics,
		TracerProvider: tp,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("build http app: %w", err)
	}

	// ---- gRPC health & reflection ----
	grpcServer, healthSrv := grpcadapter.NewServer(logger, tp)
	reporter := grpcadapter.NewStoreHealthReporter(repo, healthSrv, cfg.HealthInterval, logger)
	reporter.OnChange = metrics.SetStoreUp
	go reporter.Run(ctx)

	// ---- metrics HTTP サーバ (/metrics) ----
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	errCh := make(chan error, 3)

	go func() {
		logger.Info("metrics server started", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.GRPCHealthAddr, err)
		}
		go func() {
			logger.Info("gRPC health server started", zap.String("addr", cfg.GRPCHealthAddr))
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc health server: %w", err)
			}
		}()
	}

	go func() {
		logger.Info("http server is starting", zap.String("addr", cfg.HTTPAddr))
		if err := app.Listen(cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// ---- 終了待ち ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server exited with error", zap.Error(runErr))
	}

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Warn("failed to shutdown http server", zap.Error(err))
	}
	grpcServer.GracefulStop()

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(sctx); err != nil {
		logger.Warn("failed to shutdown metrics server", zap.Error(err))
	}

	logger.Info("server stopped")
	return runErr
}

//----------------------
// Store 選択
//----------------------

// openStore は cfg.Store に応じた Repository と、それに合う ID 表現を返す。
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain_todo.Repository, httpadapter.IDStyle, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Info("using in-memory store (data is lost on restart)")
		return memory.NewTodoRepository(), httpadapter.TextIDs, func() {}, nil
	}

	dialect, err := sqlstore.DialectFor(cfg.DB.Driver)
	if err != nil {
		return nil, 0, nil, err
	}

	dsn := cfg.DB.DSN
	if dsn == "" {
		dsn = sqlstore.BuildDSN(dialect, sqlstore.ConnParams{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Name:     cfg.DB.Name,
		})
	}

	db, err := sqlstore.Open(ctx, dialect, dsn, sqlstore.PoolParams{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, sqlstore.DefaultStartupRetry, logger)
	if err != nil {
		return nil, 0, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close db", zap.Error(err))
		}
	}

	if cfg.DB.AutoMigrate {
		if err := sqlstore.EnsureSchema(ctx, db, dialect); err != nil {
			closeDB()
			return nil, 0, nil, err
		}
	}

	logger.Info("connected to database",
		zap.String("driver", dialect.Name),
		zap.String("host", cfg.DB.Host),
		zap.String("db", cfg.DB.Name),
	)

	return sqlstore.NewTodoRepository(db, dialect, logger), httpadapter.IntegerIDs, closeDB, nil
}

