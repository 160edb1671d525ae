package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/camwatch/history-engine/internal/config"
	historyv1 "github.com/camwatch/history-engine/internal/grpc/historyv1"
)

// GRPCServer hosts the HistoryEngine service next to the standard health and
// reflection services.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	grace    time.Duration
	logger   *slog.Logger
}

// NewGRPCServer binds cfg.Address and registers service. Extra options are
// appended after the metrics and panic interceptors.
func NewGRPCServer(cfg config.ServerConfig, service historyv1.HistoryEngineServer, logger *slog.Logger, opts ...grpc.ServerOption) (*GRPCServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	server := grpc.NewServer(append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpc_prometheus.UnaryServerInterceptor,
			recoverUnary(logger),
		),
	}, opts...)...)

	historyv1.RegisterHistoryEngineServer(server, service)
	grpc_prometheus.Register(server)

	healthSrv := health.NewServer()
	for _, name := range []string{"", historyv1.ServiceName} {
		healthSrv.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	healthpb.RegisterHealthServer(server, healthSrv)
	reflection.Register(server)

	return &GRPCServer{
		server:   server,
		health:   healthSrv,
		listener: lis,
		grace:    cfg.GracefulTimeout,
		logger:   logger,
	}, nil
}

// recoverUnary turns a handler panic into codes.Internal so one bad report
// cannot take the process down.
func recoverUnary(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc handler panic",
					slog.String("method", info.FullMethod),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// Serve blocks until Shutdown. A server stopped by Shutdown returns nil.
func (s *GRPCServer) Serve() error {
	if s == nil || s.server == nil {
		return errors.New("grpc server not initialised")
	}
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown flips health to NOT_SERVING and drains in-flight calls, forcing a
// stop once ctx is done.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s == nil || s.server == nil {
		return
	}
	s.health.Shutdown()

	drained := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		s.logger.Warn("grpc drain timed out, forcing stop")
		s.server.Stop()
	}
}

// Addr is the bound listener address, useful when configured with port 0.
func (s *GRPCServer) Addr() string {
	return s.listener.Addr().String()
}

// GracefulTimeout is how long Shutdown callers should allow for draining.
func (s *GRPCServer) GracefulTimeout() time.Duration {
	if s.grace <= 0 {
		return 10 * time.Second
	}
	return s.grace
}
