package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that produced a result.
	OutcomeSuccess = "success"
	// OutcomeNoData labels analyses that found no records for the requested range.
	OutcomeNoData = "no_data"
	// OutcomeError labels analyses that failed for any other reason.
	OutcomeError = "error"
)

// Report file results.
const (
	FileLoaded  = "loaded"
	FileMissing = "missing"
	FileFailed  = "failed"
	FileEmpty   = "empty"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "camwatch_history",
			Name:      "analyses_total",
			Help:      "Total number of history analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "camwatch_history",
			Name:      "analysis_seconds",
			Help:      "End-to-end history analysis latency in seconds, including report retrieval.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	reportFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "camwatch_history",
			Name:      "report_files_total",
			Help:      "Daily report files attempted, partitioned by result.",
		},
		[]string{"result"},
	)

	rowsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "camwatch_history",
			Name:      "rows_dropped_total",
			Help:      "CSV rows discarded because the line was malformed or its timestamp was not a valid instant.",
		},
	)

	eventsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "camwatch_history",
			Name:      "events_detected_total",
			Help:      "System events emitted by the event detector, partitioned by category.",
		},
		[]string{"category"},
	)
)

// Register attaches history-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		reportFilesTotal,
		rowsDroppedTotal,
		eventsDetectedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeNoData:
	default:
		outcome = OutcomeError
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveReportFile counts one attempted daily report file.
func ObserveReportFile(result string) {
	reportFilesTotal.WithLabelValues(result).Inc()
}

// AddDroppedRows counts rows rejected by the record normaliser.
func AddDroppedRows(n int) {
	if n > 0 {
		rowsDroppedTotal.Add(float64(n))
	}
}

// ObserveEvent counts one detected event.
func ObserveEvent(category string) {
	eventsDetectedTotal.WithLabelValues(category).Inc()
}
