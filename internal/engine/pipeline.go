package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/camwatch/history-engine/internal/metrics"
	"github.com/camwatch/history-engine/internal/models"
)

// SessionLoader produces sessions for analysis requests.
type SessionLoader interface {
	Load(ctx context.Context, req models.AnalysisRequest) (*Session, error)
	Today() time.Time
}

// EventPublisher forwards detected events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, result models.AnalysisResult) error
}

// Pipeline orchestrates load, analysis and event fan-out for one request.
type Pipeline struct {
	logger    *slog.Logger
	loader    SessionLoader
	analyzer  *Analyzer
	publisher EventPublisher
	now       func() time.Time
	newID     func() string
}

// NewPipeline constructs a history pipeline. publisher may be nil.
func NewPipeline(logger *slog.Logger, loader SessionLoader, analyzer *Analyzer, publisher EventPublisher) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzer == nil {
		analyzer = NewAnalyzer(time.Minute, DefaultThresholds(), 0)
	}
	return &Pipeline{
		logger:    logger,
		loader:    loader,
		analyzer:  analyzer,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run loads the requested range and analyses it.
func (p *Pipeline) Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	start := p.now()
	outcome := metrics.OutcomeError
	defer func() {
		metrics.ObserveAnalysis(p.now().Sub(start), outcome)
	}()

	if p.loader == nil {
		return models.AnalysisResult{}, errors.New("session loader not configured")
	}

	session, err := p.loader.Load(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNoReports) || errors.Is(err, ErrNoDataInRange) {
			outcome = metrics.OutcomeNoData
		}
		return models.AnalysisResult{}, err
	}

	result := p.analyzer.Analyze(session)
	result.ID = p.newID()
	result.GeneratedAt = p.now().UTC()
	for _, ev := range result.Events {
		metrics.ObserveEvent(string(ev.Category))
	}

	if p.publisher != nil && len(result.Events) > 0 {
		if err := p.publisher.Publish(ctx, result); err != nil {
			p.logger.Warn("event publish failed", slog.String("analysis_id", result.ID), slog.Any("error", err))
		}
	}

	outcome = metrics.OutcomeSuccess
	p.logger.Info("history analysis complete",
		slog.String("analysis_id", result.ID),
		slog.String("folder", result.Folder),
		slog.Int("records", result.Summary.TotalRecords),
		slog.Int("events", len(result.Events)),
		slog.Int("loaded_files", len(result.LoadedFiles)),
	)
	return result, nil
}

// RunToday analyses the current calendar day only.
func (p *Pipeline) RunToday(ctx context.Context, folder string) (models.AnalysisResult, error) {
	if p.loader == nil {
		return models.AnalysisResult{}, errors.New("session loader not configured")
	}
	today := p.loader.Today()
	return p.Run(ctx, models.AnalysisRequest{
		Folder: folder,
		Range:  models.DateRange{Start: &today, End: &today},
	})
}
