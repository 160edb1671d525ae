package engine

import (
	"math"
	"time"

	"github.com/camwatch/history-engine/internal/models"
)

// ComputeUptime derives availability percentages from the reconciled timeline.
// The denominator is the record span rounded up to whole minutes, so the result
// is clamped to 100 when the slot count exceeds it by one interval.
func ComputeUptime(records []models.MetricRecord, slots []Slot, interval time.Duration) models.UptimeStats {
	if len(records) == 0 {
		return models.UptimeStats{}
	}
	span := records[len(records)-1].Timestamp.Sub(records[0].Timestamp)
	stats := models.UptimeStats{TotalHours: span.Hours()}

	totalMinutes := math.Ceil(span.Minutes())
	if totalMinutes <= 0 {
		return stats
	}

	step := interval.Minutes()
	var system, apc, rtsp, internet float64
	for _, slot := range slots {
		if !slot.Present() {
			continue
		}
		system += step
		if slot.Record.Healthy(models.ServiceAPC) {
			apc += step
		}
		if slot.Record.Healthy(models.ServiceRTSP) {
			rtsp += step
		}
		if slot.Record.Healthy(models.ServiceInternet) {
			internet += step
		}
	}

	stats.SystemUptime = percentOf(system, totalMinutes)
	stats.APCUptime = percentOf(apc, totalMinutes)
	stats.RTSPUptime = percentOf(rtsp, totalMinutes)
	stats.InternetUptime = percentOf(internet, totalMinutes)
	return stats
}

func percentOf(part, total float64) float64 {
	return math.Max(0, math.Min(100, part/total*100))
}
