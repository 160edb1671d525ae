package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/camwatch/history-engine/internal/api"
	"github.com/camwatch/history-engine/internal/engine"
	historyv1 "github.com/camwatch/history-engine/internal/grpc/historyv1"
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

// Runner is the analysis entry point the service fronts.
type Runner interface {
	Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
	RunToday(ctx context.Context, folder string) (models.AnalysisResult, error)
}

// HistoryService implements the gRPC HistoryEngine service and the HTTP runner.
type HistoryService struct {
	historyv1.UnimplementedHistoryEngineServer

	logger    *slog.Logger
	runner    Runner
	loc       *time.Location
	latencies *utils.LatencyTracker
}

// NewHistoryService constructs the service facade.
func NewHistoryService(logger *slog.Logger, runner Runner, loc *time.Location) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{
		logger:    logger,
		runner:    runner,
		loc:       loc,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Analyze handles camwatch.history.v1.HistoryEngine/Analyze.
func (s *HistoryService) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	domainReq, err := api.FromStructRequest(req, s.loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Debug("Analyze called", slog.String("folder", domainReq.Folder))

	result, err := s.Run(ctx, domainReq)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(result)
}

// Today handles camwatch.history.v1.HistoryEngine/Today.
func (s *HistoryService) Today(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	folder, err := api.FolderFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	result, err := s.RunToday(ctx, folder)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(result)
}

// Run executes one analysis and tracks its latency.
func (s *HistoryService) Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if s.runner == nil {
		return models.AnalysisResult{}, errors.New("pipeline not configured")
	}
	start := time.Now()
	result, err := s.runner.Run(ctx, req)
	s.observe(time.Since(start), err)
	return result, err
}

// RunToday executes a today-only analysis and tracks its latency.
func (s *HistoryService) RunToday(ctx context.Context, folder string) (models.AnalysisResult, error) {
	if s.runner == nil {
		return models.AnalysisResult{}, errors.New("pipeline not configured")
	}
	start := time.Now()
	result, err := s.runner.RunToday(ctx, folder)
	s.observe(time.Since(start), err)
	return result, err
}

func (s *HistoryService) observe(duration time.Duration, err error) {
	if err != nil {
		if api.HTTPStatus(err) >= 500 {
			s.logger.Error("history analysis failed", slog.Any("error", err))
		} else {
			s.logger.Info("history analysis returned no data", slog.String("reason", utils.UserMessage(err)))
		}
		return
	}
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("analysis latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}
}

// LatencyP95 returns the current p95 analysis latency.
func (s *HistoryService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func toStruct(result models.AnalysisResult) (*structpb.Struct, error) {
	out, err := api.ToStructResult(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func grpcError(err error) error {
	msg := utils.UserMessage(err)
	switch {
	case errors.Is(err, engine.ErrNoReports), errors.Is(err, engine.ErrNoDataInRange):
		return status.Error(codes.NotFound, msg)
	case errors.Is(err, engine.ErrInvalidRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, msg)
	default:
		return status.Error(codes.Internal, "history analysis failed")
	}
}
