package engine

import (
	"math"
	"testing"
	"time"

	"github.com/camwatch/history-engine/internal/models"
)

func TestComputeUptimeWithGaps(t *testing.T) {
	records := []models.MetricRecord{
		healthyRecord(baseTime),
		healthyRecord(baseTime.Add(time.Minute)),
		healthyRecord(baseTime.Add(5 * time.Minute)),
	}
	records[1].RTSPStatus = "stopped"
	records[2].InternetStatus = "disconnected"

	stats := ComputeUptime(records, Reconcile(records, time.Minute), time.Minute)
	if stats.SystemUptime != 60 {
		t.Fatalf("expected 60%% system uptime, got %v", stats.SystemUptime)
	}
	if stats.APCUptime != 60 {
		t.Fatalf("expected 60%% apc uptime, got %v", stats.APCUptime)
	}
	if stats.RTSPUptime != 40 || stats.InternetUptime != 40 {
		t.Fatalf("unexpected service uptime %+v", stats)
	}
	if math.Abs(stats.TotalHours-5.0/60) > 1e-9 {
		t.Fatalf("unexpected total hours %v", stats.TotalHours)
	}
}

func TestComputeUptimeClampsToHundred(t *testing.T) {
	records := minuteRecords(120)
	stats := ComputeUptime(records, Reconcile(records, time.Minute), time.Minute)
	for name, v := range map[string]float64{
		"system":   stats.SystemUptime,
		"apc":      stats.APCUptime,
		"rtsp":     stats.RTSPUptime,
		"internet": stats.InternetUptime,
	} {
		if v < 0 || v > 100 {
			t.Fatalf("%s uptime out of bounds: %v", name, v)
		}
		if v != 100 {
			t.Fatalf("%s uptime expected 100 for continuous data, got %v", name, v)
		}
	}
}

func TestComputeUptimeZeroSpan(t *testing.T) {
	records := minuteRecords(1)
	stats := ComputeUptime(records, Reconcile(records, time.Minute), time.Minute)
	if stats != (models.UptimeStats{}) {
		t.Fatalf("expected zero stats for a single sample, got %+v", stats)
	}
	if stats := ComputeUptime(nil, nil, time.Minute); stats != (models.UptimeStats{}) {
		t.Fatalf("expected zero stats for empty input, got %+v", stats)
	}
}
