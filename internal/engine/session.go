package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/camwatch/history-engine/internal/extractors"
	"github.com/camwatch/history-engine/internal/metrics"
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/repo"
	"github.com/camwatch/history-engine/internal/utils"
)

var (
	// ErrNoReports is returned when no candidate file yielded a record.
	ErrNoReports = errors.New("no report data loaded")
	// ErrNoDataInRange is returned when records were loaded but none fall within the requested bounds.
	ErrNoDataInRange = errors.New("no data found for the selected date range")
)

// Session is the outcome of one load: the merged, sorted, range-filtered records
// plus the bookkeeping a renderer shows next to them. A failed load returns no
// session, so callers keep whatever they held before.
type Session struct {
	Folder         string
	Range          models.DateRange
	Window         Window
	AttemptedFiles []string
	LoadedFiles    []string
	DroppedRows    int
	Records        []models.MetricRecord
}

// LoaderOptions configures how a Loader resolves requests.
type LoaderOptions struct {
	Location      *time.Location
	LookbackDays  int
	DefaultFolder string
}

// Loader reads daily report files from a source into sessions.
type Loader struct {
	source    repo.ReportSource
	extractor *extractors.RecordExtractor
	opts      LoaderOptions
	now       func() time.Time
	logger    *slog.Logger
}

// NewLoader constructs a loader over source.
func NewLoader(source repo.ReportSource, opts LoaderOptions, logger *slog.Logger) *Loader {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:    source,
		extractor: extractors.NewRecordExtractor(opts.Location),
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// Today returns the current calendar day in the loader's location.
func (l *Loader) Today() time.Time {
	return utils.StartOfDay(l.now().In(l.opts.Location))
}

// Location returns the zone used for day bounds.
func (l *Loader) Location() *time.Location {
	return l.opts.Location
}

// Load fetches every candidate file of the request window in order. Missing or
// unreadable files are skipped; the load fails only when nothing usable remains.
func (l *Loader) Load(ctx context.Context, req models.AnalysisRequest) (*Session, error) {
	if l == nil || l.source == nil {
		return nil, fmt.Errorf("report loader not configured")
	}

	folder := strings.TrimSpace(req.Folder)
	if folder == "" {
		folder = l.opts.DefaultFolder
	}
	window, err := ResolveWindow(req.Range, l.now(), l.opts.LookbackDays, l.opts.Location)
	if err != nil {
		return nil, utils.NewAppError("engine.Load", "invalid date range", err)
	}

	session := &Session{
		Folder:         folder,
		Range:          req.Range,
		Window:         window,
		AttemptedFiles: window.FileNames(),
	}

	var records []models.MetricRecord
	for _, name := range session.AttemptedFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileRecords, dropped, ok := l.loadFile(ctx, folder, name)
		session.DroppedRows += dropped
		if !ok {
			continue
		}
		session.LoadedFiles = append(session.LoadedFiles, name)
		records = append(records, fileRecords...)
	}
	metrics.AddDroppedRows(session.DroppedRows)

	if len(records) == 0 {
		msg := fmt.Sprintf("no CSV files found in %s: tried %d files", folder, len(session.AttemptedFiles))
		return nil, utils.NewAppError("engine.Load", msg, ErrNoReports)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	if window.Filtered() {
		kept := records[:0]
		for _, r := range records {
			if window.Contains(r.Timestamp) {
				kept = append(kept, r)
			}
		}
		records = kept
		if len(records) == 0 {
			return nil, utils.NewAppError("engine.Load", ErrNoDataInRange.Error(), ErrNoDataInRange)
		}
	}

	session.Records = records
	l.logger.Debug("report session loaded",
		slog.String("folder", folder),
		slog.Int("attempted", len(session.AttemptedFiles)),
		slog.Int("loaded", len(session.LoadedFiles)),
		slog.Int("records", len(records)),
	)
	return session, nil
}

func (l *Loader) loadFile(ctx context.Context, folder, name string) ([]models.MetricRecord, int, bool) {
	data, err := l.source.Fetch(ctx, folder, name)
	if err != nil {
		if errors.Is(err, repo.ErrReportNotFound) {
			metrics.ObserveReportFile(metrics.FileMissing)
			l.logger.Debug("report file missing", slog.String("file", name))
		} else {
			metrics.ObserveReportFile(metrics.FileFailed)
			l.logger.Warn("report file fetch failed", slog.String("file", name), slog.Any("error", err))
		}
		return nil, 0, false
	}

	table, err := extractors.DecodeCSV(data)
	if err != nil {
		if errors.Is(err, extractors.ErrEmptyReport) {
			metrics.ObserveReportFile(metrics.FileEmpty)
			l.logger.Debug("report file empty", slog.String("file", name))
		} else {
			metrics.ObserveReportFile(metrics.FileFailed)
			l.logger.Warn("report file decode failed", slog.String("file", name), slog.Any("error", err))
		}
		return nil, 0, false
	}

	records, dropped := l.extractor.ExtractAll(table.Rows)
	dropped += table.Skipped
	if len(records) == 0 {
		metrics.ObserveReportFile(metrics.FileEmpty)
		l.logger.Debug("report file has no valid rows", slog.String("file", name), slog.Int("dropped", dropped))
		return nil, dropped, false
	}
	metrics.ObserveReportFile(metrics.FileLoaded)
	return records, dropped, true
}
