package extractors

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts tried in order. Go accepts a fractional second after the seconds field
// even when the layout omits it, which covers Python's isoformat() microseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
	"2006-01-02",
}

// maxEpochMillis is the largest magnitude a browser Date accepts (±100,000,000
// days around the epoch). Anything beyond it is not a valid instant.
const maxEpochMillis = 8.64e15

// ParseTimestamp coerces a raw cell into an instant. Zone-less values are read in
// loc; bare integers are epoch milliseconds.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if ms, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).In(loc), true
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
