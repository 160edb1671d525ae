package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/repo"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func healthyRecord(ts time.Time) models.MetricRecord {
	return models.MetricRecord{
		Timestamp:      ts,
		CPUPercent:     20,
		RAMPercent:     40,
		DiskPercent:    50,
		TemperatureC:   60,
		APCStatus:      "running",
		RTSPStatus:     "running",
		InternetStatus: "connected",
		Eth0Status:     "up",
		RootMountMode:  "rw",
	}
}

func minuteRecords(n int) []models.MetricRecord {
	records := make([]models.MetricRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, healthyRecord(baseTime.Add(time.Duration(i)*time.Minute)))
	}
	return records
}

const reportHeader = "timestamp,cpu_percent,ram_percent,disk_percent,temperature_c,arp_device_count,apc_status,rtsp_recorder_status,internet_status,pending_videos\n"

func reportCSV(records []models.MetricRecord) string {
	var b strings.Builder
	b.WriteString(reportHeader)
	for _, r := range records {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,%d,%s,%s,%s,%d\n",
			r.Timestamp.Format("2006-01-02T15:04:05"),
			r.CPUPercent, r.RAMPercent, r.DiskPercent, r.TemperatureC, r.ARPDeviceCount,
			r.APCStatus, r.RTSPStatus, r.InternetStatus, r.PendingVideos)
	}
	return b.String()
}

type mapSource struct {
	mu      sync.Mutex
	files   map[string]string
	fetched []string
}

func (m *mapSource) Fetch(ctx context.Context, folder, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, folder+"/"+name)
	body, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, repo.ErrReportNotFound)
	}
	return []byte(body), nil
}

func newTestLoader(source repo.ReportSource, now time.Time) *Loader {
	loader := NewLoader(source, LoaderOptions{Location: time.UTC, DefaultFolder: "./metrics/"}, nil)
	loader.now = func() time.Time { return now }
	return loader
}

func dayPtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
