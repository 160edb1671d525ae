package engine

import (
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

// Summarize computes record count and avg/min/max of the headline metrics.
func Summarize(records []models.MetricRecord) models.Summary {
	if len(records) == 0 {
		return models.Summary{}
	}
	return models.Summary{
		TotalRecords: len(records),
		Temperature:  statOf(records, func(r models.MetricRecord) float64 { return r.TemperatureC }),
		RAM:          statOf(records, func(r models.MetricRecord) float64 { return r.RAMPercent }),
		Disk:         statOf(records, func(r models.MetricRecord) float64 { return r.DiskPercent }),
		CPU:          statOf(records, func(r models.MetricRecord) float64 { return r.CPUPercent }),
	}
}

func statOf(records []models.MetricRecord, value func(models.MetricRecord) float64) models.Stat {
	first := value(records[0])
	sum, lo, hi := 0.0, first, first
	for _, r := range records {
		v := value(r)
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return models.Stat{
		Avg: utils.RoundTo(sum/float64(len(records)), 1),
		Min: utils.RoundTo(lo, 1),
		Max: utils.RoundTo(hi, 1),
	}
}
