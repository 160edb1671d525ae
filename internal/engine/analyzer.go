package engine

import (
	"time"

	"github.com/camwatch/history-engine/internal/models"
)

// Analyzer turns a loaded session into the derived history view. It holds no
// per-run state, so one instance serves concurrent requests.
type Analyzer struct {
	interval time.Duration
	detector *EventDetector
}

// NewAnalyzer builds an analyzer for the given sampling interval and limits.
func NewAnalyzer(interval time.Duration, th Thresholds, gap time.Duration) *Analyzer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Analyzer{interval: interval, detector: NewEventDetector(th, gap)}
}

// Interval returns the expected sampling interval.
func (a *Analyzer) Interval() time.Duration { return a.interval }

// Analyze computes every derived output for the session's records.
func (a *Analyzer) Analyze(session *Session) models.AnalysisResult {
	result := models.AnalysisResult{}
	if session == nil {
		return result
	}
	result.Folder = session.Folder
	result.AttemptedFiles = len(session.AttemptedFiles)
	result.LoadedFiles = append([]string(nil), session.LoadedFiles...)

	records := session.Records
	slots := Reconcile(records, a.interval)
	events := a.detector.Detect(records)

	result.Summary = Summarize(records)
	result.Uptime = ComputeUptime(records, slots, a.interval)
	result.Events = events
	result.EventCounts = CountEvents(events)
	result.MetricSeries = MetricSeries(records)
	result.ServiceSeries = ServiceSeries(slots)
	result.SystemAvailability = Availability(slots)
	result.Transitions = make(map[models.Service][]models.StatusTransition, len(models.Services))
	for _, service := range models.Services {
		result.Transitions[service] = Transitions(service, records, a.interval)
	}
	return result
}
