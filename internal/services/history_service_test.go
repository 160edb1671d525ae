package services

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/camwatch/history-engine/internal/engine"
	historyv1 "github.com/camwatch/history-engine/internal/grpc/historyv1"
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

type runnerStub struct {
	req    models.AnalysisRequest
	folder string
	err    error
}

func (r *runnerStub) Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	r.req = req
	if r.err != nil {
		return models.AnalysisResult{}, r.err
	}
	return models.AnalysisResult{
		ID:      "analysis-1",
		Folder:  req.Folder,
		Summary: models.Summary{TotalRecords: 3},
	}, nil
}

func (r *runnerStub) RunToday(ctx context.Context, folder string) (models.AnalysisResult, error) {
	r.folder = folder
	if r.err != nil {
		return models.AnalysisResult{}, r.err
	}
	return models.AnalysisResult{ID: "today-1", Folder: folder}, nil
}

func TestAnalyze(t *testing.T) {
	runner := &runnerStub{}
	service := NewHistoryService(nil, runner, time.UTC)

	req, _ := structpb.NewStruct(map[string]any{"folder": "cam", "start": "2025-03-01"})
	resp, err := service.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.GetFields()["id"].GetStringValue() != "analysis-1" {
		t.Fatalf("unexpected response %v", resp)
	}
	if runner.req.Folder != "cam" || runner.req.Range.Start == nil || runner.req.Range.End != nil {
		t.Fatalf("unexpected forwarded request %+v", runner.req)
	}
}

func TestAnalyzeInvalidArgument(t *testing.T) {
	service := NewHistoryService(nil, &runnerStub{}, time.UTC)

	req, _ := structpb.NewStruct(map[string]any{"start": "first of march"})
	_, err := service.Analyze(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := service.Analyze(context.Background(), nil); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument for nil, got %v", err)
	}
}

func TestAnalyzeNotFound(t *testing.T) {
	msg := "no CSV files found in cam: tried 1 files"
	service := NewHistoryService(nil, &runnerStub{err: utils.NewAppError("engine.Load", msg, engine.ErrNoReports)}, time.UTC)

	_, err := service.Today(context.Background(), &structpb.Struct{})
	st, _ := status.FromError(err)
	if st.Code() != codes.NotFound || st.Message() != msg {
		t.Fatalf("expected not found with user message, got %v", err)
	}
}

func TestGRPCErrorMapping(t *testing.T) {
	cases := map[error]codes.Code{
		engine.ErrNoDataInRange:    codes.NotFound,
		engine.ErrInvalidRange:     codes.InvalidArgument,
		context.Canceled:           codes.Canceled,
		context.DeadlineExceeded:   codes.DeadlineExceeded,
		errors.New("disk on fire"): codes.Internal,
	}
	for err, want := range cases {
		if got := status.Code(grpcError(err)); got != want {
			t.Fatalf("%v: expected %s, got %s", err, want, got)
		}
	}
}

func TestHistoryEngineOverGRPC(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	runner := &runnerStub{}
	historyv1.RegisterHistoryEngineServer(server, NewHistoryService(nil, runner, time.UTC))
	go func() { _ = server.Serve(lis) }()
	defer server.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	client := historyv1.NewHistoryEngineClient(conn)
	req, _ := structpb.NewStruct(map[string]any{"folder": "cam"})
	resp, err := client.Today(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AsMap()["id"] != "today-1" || runner.folder != "cam" {
		t.Fatalf("unexpected response %v (folder %q)", resp.AsMap(), runner.folder)
	}
}
