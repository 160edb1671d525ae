package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/camwatch/history-engine/internal/models"
)

const (
	iconRecovery = "✓"
	iconWarning  = "⚠"
	iconGap      = "⏸"

	sourceSystem = "system"
)

type serviceRule struct {
	service      models.Service
	downCategory models.EventCategory
	downIcon     string
	downMessage  string
	upMessage    string
	upValue      string
}

var serviceRules = []serviceRule{
	{
		service:      models.ServiceAPC,
		downCategory: models.CategoryCritical,
		downIcon:     "⚡",
		downMessage:  "APC went offline",
		upMessage:    "APC came back online",
		upValue:      "Status: running",
	},
	{
		service:      models.ServiceRTSP,
		downCategory: models.CategoryWarning,
		downIcon:     "📹",
		downMessage:  "RTSP service went down",
		upMessage:    "RTSP service restored",
		upValue:      "Status: running",
	},
	{
		service:      models.ServiceInternet,
		downCategory: models.CategoryWarning,
		downIcon:     "🌐",
		downMessage:  "Internet connectivity lost",
		upMessage:    "Internet connectivity restored",
		upValue:      "Status: up",
	},
}

type thresholdRule struct {
	source       string
	label        string
	unit         string
	criticalIcon string
	limit        Limit
	value        func(models.MetricRecord) float64
}

// EventDetector finds state changes between consecutive samples.
type EventDetector struct {
	rules []thresholdRule
	gap   time.Duration
}

// NewEventDetector builds a detector for the given limits. A positive gap enables
// info events when consecutive samples are further apart than gap.
func NewEventDetector(th Thresholds, gap time.Duration) *EventDetector {
	return &EventDetector{
		rules: []thresholdRule{
			{
				source:       models.SeriesTemperature,
				label:        "Temperature",
				unit:         "°C",
				criticalIcon: "🔥",
				limit:        th.Temperature,
				value:        func(r models.MetricRecord) float64 { return r.TemperatureC },
			},
			{
				source:       models.SeriesRAM,
				label:        "RAM usage",
				unit:         "%",
				criticalIcon: "💾",
				limit:        th.RAM,
				value:        func(r models.MetricRecord) float64 { return r.RAMPercent },
			},
			{
				source:       models.SeriesDisk,
				label:        "Disk usage",
				unit:         "%",
				criticalIcon: "💽",
				limit:        th.Disk,
				value:        func(r models.MetricRecord) float64 { return r.DiskPercent },
			},
		},
		gap: gap,
	}
}

// Detect walks sorted records once and returns events newest-first. Events that
// share a timestamp keep their detection order.
func (d *EventDetector) Detect(records []models.MetricRecord) []models.SystemEvent {
	events := make([]models.SystemEvent, 0)
	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1], records[i]

		if d.gap > 0 {
			if elapsed := curr.Timestamp.Sub(prev.Timestamp); elapsed > d.gap {
				events = append(events, models.SystemEvent{
					Timestamp: curr.Timestamp,
					Category:  models.CategoryInfo,
					Source:    sourceSystem,
					Icon:      iconGap,
					Message:   "Monitoring data gap",
					Value:     fmt.Sprintf("No samples for %d min", int64(math.Round(elapsed.Minutes()))),
				})
			}
		}

		for _, rule := range serviceRules {
			if ev, ok := rule.evaluate(prev, curr); ok {
				events = append(events, ev)
			}
		}
		for _, rule := range d.rules {
			if ev, ok := rule.evaluate(prev, curr); ok {
				events = append(events, ev)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events
}

func (r serviceRule) evaluate(prev, curr models.MetricRecord) (models.SystemEvent, bool) {
	wasUp := prev.Healthy(r.service)
	isUp := curr.Healthy(r.service)
	ev := models.SystemEvent{Timestamp: curr.Timestamp, Source: string(r.service)}
	switch {
	case wasUp && !isUp:
		ev.Category = r.downCategory
		ev.Icon = r.downIcon
		ev.Message = r.downMessage
		ev.Value = "Status: " + curr.Status(r.service)
	case !wasUp && isUp:
		ev.Category = models.CategoryRecovery
		ev.Icon = iconRecovery
		ev.Message = r.upMessage
		ev.Value = r.upValue
	default:
		return models.SystemEvent{}, false
	}
	return ev, true
}

// evaluate applies the crossing rules in precedence order: reaching CRITICAL,
// then reaching HIGH while still below CRITICAL, then falling back below HIGH.
func (r thresholdRule) evaluate(prev, curr models.MetricRecord) (models.SystemEvent, bool) {
	before, now := r.value(prev), r.value(curr)
	high, critical := r.limit.High, r.limit.Critical
	ev := models.SystemEvent{Timestamp: curr.Timestamp, Source: r.source}
	switch {
	case before < critical && now >= critical:
		ev.Category = models.CategoryCritical
		ev.Icon = r.criticalIcon
		ev.Message = r.label + " reached critical level"
		ev.Value = r.describe(now, ">=", critical)
	case before < high && now >= high && now < critical:
		ev.Category = models.CategoryWarning
		ev.Icon = iconWarning
		ev.Message = r.label + " is high"
		ev.Value = r.describe(now, ">=", high)
	case before >= high && now < high:
		ev.Category = models.CategoryRecovery
		ev.Icon = iconRecovery
		ev.Message = r.label + " returned to normal"
		ev.Value = r.describe(now, "<", high)
	default:
		return models.SystemEvent{}, false
	}
	return ev, true
}

func (r thresholdRule) describe(value float64, op string, limit float64) string {
	return fmt.Sprintf("%s%s (%s %s%s)", formatNumber(value), r.unit, op, formatNumber(limit), r.unit)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CountEvents tallies events per category, seeding every category with zero.
func CountEvents(events []models.SystemEvent) map[models.EventCategory]int {
	counts := make(map[models.EventCategory]int, len(models.EventCategories))
	for _, c := range models.EventCategories {
		counts[c] = 0
	}
	for _, ev := range events {
		counts[ev.Category]++
	}
	return counts
}
