package api

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/camwatch/history-engine/internal/config"
	historyv1 "github.com/camwatch/history-engine/internal/grpc/historyv1"
)

type panickingService struct {
	historyv1.UnimplementedHistoryEngineServer
}

func (panickingService) Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	panic("corrupt report")
}

func TestGRPCServerHealthAndPanicRecovery(t *testing.T) {
	srv, err := NewGRPCServer(config.ServerConfig{Address: "127.0.0.1:0"}, panickingService{}, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: historyv1.ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %s", health.GetStatus())
	}

	_, err = historyv1.NewHistoryEngineClient(conn).Analyze(ctx, &structpb.Struct{})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal from panicking handler, got %v", err)
	}

	if srv.GracefulTimeout() != 10*time.Second {
		t.Fatalf("expected default graceful timeout, got %v", srv.GracefulTimeout())
	}
	srv.Shutdown(ctx)
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v after shutdown", err)
	}
}
