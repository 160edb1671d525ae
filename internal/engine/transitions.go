package engine

import (
	"math"
	"sort"
	"time"

	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

// Transitions segments a service's history into contiguous Online/Offline runs.
// Only intervals that hold a sample are considered. A run closed by a change ends
// at the key where the change was seen, so each run ends where the next starts;
// the final run ends at the last key and therefore omits its last interval.
func Transitions(service models.Service, records []models.MetricRecord, interval time.Duration) []models.StatusTransition {
	if len(records) == 0 {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}

	byKey := make(map[int64]models.MetricRecord, len(records))
	for _, record := range records {
		byKey[utils.TruncateToInterval(record.Timestamp, interval).UnixMilli()] = record
	}
	keys := make([]int64, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	loc := records[0].Timestamp.Location()
	at := func(key int64) time.Time { return time.UnixMilli(key).In(loc) }

	var runs []models.StatusTransition
	runStatus := linkStatus(service, byKey[keys[0]])
	runStart := keys[0]
	for _, key := range keys[1:] {
		status := linkStatus(service, byKey[key])
		if status == runStatus {
			continue
		}
		runs = append(runs, newTransition(service, runStatus, at(runStart), at(key)))
		runStatus, runStart = status, key
	}
	runs = append(runs, newTransition(service, runStatus, at(runStart), at(keys[len(keys)-1])))
	return runs
}

func linkStatus(service models.Service, record models.MetricRecord) models.LinkStatus {
	if record.Healthy(service) {
		return models.LinkOnline
	}
	return models.LinkOffline
}

func newTransition(service models.Service, status models.LinkStatus, start, end time.Time) models.StatusTransition {
	return models.StatusTransition{
		Service:         service,
		Status:          status,
		Start:           start,
		End:             end,
		DurationMinutes: int64(math.Round(end.Sub(start).Minutes())),
	}
}
