package grpcadapter

import (
	"context"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName は health プロトコル上の Todo サービス名。
const ServiceName = "todo.v1.TodoService"

// Pinger はストアの疎通確認。
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSetter は health.Server が満たす。
type StatusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// StoreHealthReporter はストアを定期的に ping して health の状態に反映する。
type StoreHealthReporter struct {
	store    Pinger
	health   StatusSetter
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	// OnChange は判定のたびに呼ばれる（メトリクス更新用、nil 可）
	OnChange func(up bool)
}

func NewStoreHealthReporter(store Pinger, health StatusSetter, interval time.Duration, logger *zap.Logger) *StoreHealthReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &StoreHealthReporter{
		store:    store,
		health:   health,
		interval: interval,
		timeout:  2 * time.Second,
		logger:   logger,
	}
}

// Run は ctx が終わるまで ping を繰り返す。最初の 1 回は即時。
func (r *StoreHealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	prev := r.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			up := r.Check(ctx)
			if up != prev {
				r.logger.Info("store health changed", zap.Bool("up", up))
			}
			prev = up
		}
	}
}

// Check は 1 回 ping して状態を反映し、結果を返す。
func (r *StoreHealthReporter) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	up := true
	if err := r.store.Ping(pctx); err != nil {
		r.logger.Warn("store ping failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
		up = false
	}

	r.health.SetServingStatus("", st)
	r.health.SetServingStatus(ServiceName, st)
	if r.OnChange != nil {
		r.OnChange(up)
	}
	return up
}
