package engine

import (
	"github.com/camwatch/history-engine/internal/models"
)

var metricSeries = []struct {
	name  string
	value func(models.MetricRecord) float64
}{
	{models.SeriesTemperature, func(r models.MetricRecord) float64 { return r.TemperatureC }},
	{models.SeriesRAM, func(r models.MetricRecord) float64 { return r.RAMPercent }},
	{models.SeriesDisk, func(r models.MetricRecord) float64 { return r.DiskPercent }},
	{models.SeriesCPU, func(r models.MetricRecord) float64 { return r.CPUPercent }},
	{models.SeriesPendingVideos, func(r models.MetricRecord) float64 { return float64(r.PendingVideos) }},
}

// MetricSeries returns one point per record for every plotted metric.
func MetricSeries(records []models.MetricRecord) map[string][]models.SeriesPoint {
	out := make(map[string][]models.SeriesPoint, len(metricSeries))
	for _, s := range metricSeries {
		points := make([]models.SeriesPoint, 0, len(records))
		for _, r := range records {
			points = append(points, models.SeriesPoint{Timestamp: r.Timestamp, Value: s.value(r)})
		}
		out[s.name] = points
	}
	return out
}

// ServiceSeries returns a 0/1 status point per slot for every service. Empty
// slots count as down.
func ServiceSeries(slots []Slot) map[models.Service][]models.StatusPoint {
	out := make(map[models.Service][]models.StatusPoint, len(models.Services))
	for _, service := range models.Services {
		points := make([]models.StatusPoint, 0, len(slots))
		for _, slot := range slots {
			up := 0
			if slot.Present() && slot.Record.Healthy(service) {
				up = 1
			}
			points = append(points, models.StatusPoint{Timestamp: slot.Time, Up: up})
		}
		out[service] = points
	}
	return out
}

// Availability marks each slot 1 when the device reported a sample for it.
func Availability(slots []Slot) []models.StatusPoint {
	points := make([]models.StatusPoint, 0, len(slots))
	for _, slot := range slots {
		up := 0
		if slot.Present() {
			up = 1
		}
		points = append(points, models.StatusPoint{Timestamp: slot.Time, Up: up})
	}
	return points
}
