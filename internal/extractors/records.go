package extractors

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/camwatch/history-engine/internal/models"
)

// Report column names as written by the device monitor.
const (
	ColumnTimestamp      = "timestamp"
	ColumnCPU            = "cpu_percent"
	ColumnRAM            = "ram_percent"
	ColumnDisk           = "disk_percent"
	ColumnTemperature    = "temperature_c"
	ColumnARPDevices     = "arp_device_count"
	ColumnPendingVideos  = "pending_videos"
	ColumnAPCStatus      = "apc_status"
	ColumnRTSPStatus     = "rtsp_recorder_status"
	ColumnInternetStatus = "internet_status"
	ColumnEth0Status     = "eth0_status"
	ColumnRootMountMode  = "root_mount_mode"

	legacyColumnRTSPStatus = "rtsp_status"
)

// RecordExtractor turns decoded rows into normalised metric records.
type RecordExtractor struct {
	loc *time.Location
}

// NewRecordExtractor creates an extractor reading zone-less timestamps in loc.
func NewRecordExtractor(loc *time.Location) *RecordExtractor {
	if loc == nil {
		loc = time.Local
	}
	return &RecordExtractor{loc: loc}
}

// Extract normalises one row. It reports false when the timestamp is unusable;
// every other field falls back to its default instead of failing the row.
func (e *RecordExtractor) Extract(row Row) (models.MetricRecord, bool) {
	ts, ok := ParseTimestamp(row[ColumnTimestamp], e.loc)
	if !ok {
		return models.MetricRecord{}, false
	}

	rtsp, present := row[ColumnRTSPStatus]
	if !present {
		rtsp = row[legacyColumnRTSPStatus]
	}

	return models.MetricRecord{
		Timestamp:      ts,
		CPUPercent:     parseNumber(row[ColumnCPU]),
		RAMPercent:     parseNumber(row[ColumnRAM]),
		DiskPercent:    parseNumber(row[ColumnDisk]),
		TemperatureC:   parseNumber(row[ColumnTemperature]),
		ARPDeviceCount: parseCount(row[ColumnARPDevices]),
		PendingVideos:  parseCount(row[ColumnPendingVideos]),
		APCStatus:      parseStatus(row[ColumnAPCStatus]),
		RTSPStatus:     parseStatus(rtsp),
		InternetStatus: parseStatus(row[ColumnInternetStatus]),
		Eth0Status:     parseStatus(row[ColumnEth0Status]),
		RootMountMode:  parseStatus(row[ColumnRootMountMode]),
	}, true
}

// ExtractAll normalises rows in order and returns how many were dropped.
func (e *RecordExtractor) ExtractAll(rows []Row) ([]models.MetricRecord, int) {
	records := make([]models.MetricRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		record, ok := e.Extract(row)
		if !ok {
			dropped++
			continue
		}
		records = append(records, record)
	}
	return records, dropped
}

func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return int(n)
	}
	v := parseNumber(raw)
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0
	}
	return int(v)
}

func parseStatus(raw string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return models.StatusUnknown
}
