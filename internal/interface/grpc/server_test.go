package grpcadapter

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// startBufconn は bufconn 上でサーバを起動し、health クライアントを返す。
func startBufconn(t *testing.T, srv *grpc.Server) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestStoreHealthReporter_ReflectsPing(t *testing.T) {
	srv, healthSrv := NewServer(zap.NewNop(), nil)
	client := startBufconn(t, srv)
	ctx := context.Background()

	var failing atomic.Bool
	var lastUp atomic.Bool
	store := pingerFunc(func(ctx context.Context) error {
		if failing.Load() {
			return errors.New("connection refused")
		}
		return nil
	})

	reporter := NewStoreHealthReporter(store, healthSrv, 0, zap.NewNop())
	reporter.OnChange = func(up bool) { lastUp.Store(up) }

	require.True(t, reporter.Check(ctx))
	res, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())
	assert.True(t, lastUp.Load())

	failing.Store(true)
	require.False(t, reporter.Check(ctx))
	res, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ""})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, res.GetStatus())
	assert.False(t, lastUp.Load())
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	icpt := NewRecoveryUnaryInterceptor(zap.NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Panic"}

	_, err := icpt(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")
}
