package engine

import (
	"time"

	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

// Slot is one expected sampling point on the reconciled timeline. Record is nil
// when the device produced no sample for the interval.
type Slot struct {
	Time   time.Time
	Record *models.MetricRecord
}

// Present reports whether the slot holds a sample.
func (s Slot) Present() bool { return s.Record != nil }

// Reconcile lays sorted records onto a fixed-interval timeline. Slots step from
// the first timestamp by interval while not after the last one; when several
// records share an interval the latest in input order wins.
func Reconcile(records []models.MetricRecord, interval time.Duration) []Slot {
	if len(records) == 0 {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}

	index := indexByInterval(records, interval)
	first := records[0].Timestamp
	last := records[len(records)-1].Timestamp

	slots := make([]Slot, 0, int(last.Sub(first)/interval)+1)
	for t := first; !t.After(last); t = t.Add(interval) {
		key := utils.TruncateToInterval(t, interval)
		slot := Slot{Time: key}
		if i, ok := index[key.UnixMilli()]; ok {
			slot.Record = &records[i]
		}
		slots = append(slots, slot)
	}
	return slots
}

// indexByInterval maps each truncated interval key to the position of the last
// record falling in it.
func indexByInterval(records []models.MetricRecord, interval time.Duration) map[int64]int {
	index := make(map[int64]int, len(records))
	for i := range records {
		index[utils.TruncateToInterval(records[i].Timestamp, interval).UnixMilli()] = i
	}
	return index
}
