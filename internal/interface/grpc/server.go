// Package grpcadapter は運用向けの gRPC リスナ（標準 health プロトコル + reflection）。
// Todo の CRUD 自体は HTTP 側だけで提供する。
package grpcadapter

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewServer は health / reflection を登録した gRPC サーバを返す。
// tp が nil ならグローバルの TracerProvider を使う。
func NewServer(logger *zap.Logger, tp trace.TracerProvider) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var otelOpts []otelgrpc.Option
	if tp != nil {
		otelOpts = append(otelOpts, otelgrpc.WithTracerProvider(tp))
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelOpts...)),
		grpc.ChainUnaryInterceptor(
			NewRecoveryUnaryInterceptor(logger),
			NewLoggingUnaryInterceptor(logger),
		),
		grpc.ChainStreamInterceptor(
			NewRecoveryStreamInterceptor(logger),
			NewLoggingStreamInterceptor(logger),
		),
	)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	reflection.Register(srv)

	return srv, healthSrv
}
