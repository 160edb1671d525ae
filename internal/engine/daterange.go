package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/repo"
	"github.com/camwatch/history-engine/internal/utils"
)

// ErrInvalidRange is returned when the requested start day is after the end day.
var ErrInvalidRange = errors.New("start date is after end date")

// DefaultLookbackDays is used when only one bound, or none, is supplied.
const DefaultLookbackDays = 30

// Window is a resolved request range: the calendar days whose files are read and
// the record filter derived from the bounds the caller actually supplied.
type Window struct {
	From        time.Time
	To          time.Time
	FilterStart *time.Time
	FilterEnd   *time.Time
}

// ResolveWindow applies the range defaults: both bounds are used as given, a lone
// start runs to today, a lone end looks back lookbackDays, and no bounds means
// the lookback window ending today. Only explicit bounds filter records.
func ResolveWindow(r models.DateRange, now time.Time, lookbackDays int, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	today := utils.StartOfDay(now.In(loc))

	var w Window
	switch {
	case r.Start != nil && r.End != nil:
		w.From, w.To = utils.StartOfDay(r.Start.In(loc)), utils.StartOfDay(r.End.In(loc))
	case r.Start != nil:
		w.From, w.To = utils.StartOfDay(r.Start.In(loc)), today
	case r.End != nil:
		w.To = utils.StartOfDay(r.End.In(loc))
		w.From = w.To.AddDate(0, 0, -lookbackDays)
	default:
		w.From, w.To = today.AddDate(0, 0, -lookbackDays), today
	}
	if w.From.After(w.To) {
		return Window{}, fmt.Errorf("%s > %s: %w", w.From.Format(utils.DateLayout), w.To.Format(utils.DateLayout), ErrInvalidRange)
	}

	if r.Start != nil {
		start := w.From
		w.FilterStart = &start
	}
	if r.End != nil {
		end := utils.EndOfDay(w.To)
		w.FilterEnd = &end
	}
	return w, nil
}

// Days lists every calendar day in the window, oldest first.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.From; !d.After(w.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// FileNames lists the daily report file candidates for the window.
func (w Window) FileNames() []string {
	days := w.Days()
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, repo.ReportFileName(d))
	}
	return names
}

// Contains reports whether t passes the explicit bounds. Both ends are inclusive.
func (w Window) Contains(t time.Time) bool {
	if w.FilterStart != nil && t.Before(*w.FilterStart) {
		return false
	}
	if w.FilterEnd != nil && t.After(*w.FilterEnd) {
		return false
	}
	return true
}

// Filtered reports whether any explicit bound applies.
func (w Window) Filtered() bool {
	return w.FilterStart != nil || w.FilterEnd != nil
}
