package repo

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrReportNotFound reports that a daily file does not exist at the source.
var ErrReportNotFound = errors.New("report not found")

// ReportSource retrieves the raw bytes of one daily report file.
type ReportSource interface {
	Fetch(ctx context.Context, folder, name string) ([]byte, error)
}

const (
	reportPrefix     = "report_"
	reportSuffix     = ".csv"
	reportDateLayout = "2006-01-02"
)

// ReportFileName returns the file name used for the given calendar day.
func ReportFileName(day time.Time) string {
	return reportPrefix + day.Format(reportDateLayout) + reportSuffix
}

// ParseReportFileName extracts the calendar day from a report file name.
func ParseReportFileName(name string, loc *time.Location) (time.Time, bool) {
	if !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, reportPrefix), reportSuffix)
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(reportDateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
