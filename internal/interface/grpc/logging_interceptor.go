package grpcadapter

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// NewLoggingUnaryInterceptor logs unary RPCs with method, code, duration and peer.
func NewLoggingUnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		fields := rpcFields(ctx, info.FullMethod, time.Since(start), err)
		if err != nil {
			logger.Error("gRPC unary request", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("gRPC unary request", fields...)
		}

		return resp, err
	}
}

// NewLoggingStreamInterceptor logs stream RPCs (health Watch など) when they end.
func NewLoggingStreamInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()

		err := handler(srv, ss)

		fields := rpcFields(ss.Context(), info.FullMethod, time.Since(start), err)
		if err != nil {
			logger.Error("gRPC stream request", append(fields, zap.Error(err))...)
		} else {
			logger.Info("gRPC stream request", fields...)
		}

		return err
	}
}

func rpcFields(ctx context.Context, method string, d time.Duration, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("code", status.Code(err).String()),
		zap.Duration("duration", d),
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		fields = append(fields, zap.String("peer", p.Addr.String()))
	}
	return fields
}
