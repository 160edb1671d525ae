package models

import "time"

// DateRange holds optional calendar-day bounds for a history request.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// AnalysisRequest asks for the history of one report folder.
type AnalysisRequest struct {
	Folder string
	Range  DateRange
}

// UptimeStats aggregates availability over the reconciled timeline.
type UptimeStats struct {
	SystemUptime   float64 `json:"system_uptime"`
	APCUptime      float64 `json:"apc_uptime"`
	RTSPUptime     float64 `json:"rtsp_uptime"`
	InternetUptime float64 `json:"internet_uptime"`
	TotalHours     float64 `json:"total_hours"`
}

// Service returns the uptime percentage for a single service.
func (u UptimeStats) Service(s Service) float64 {
	switch s {
	case ServiceAPC:
		return u.APCUptime
	case ServiceRTSP:
		return u.RTSPUptime
	case ServiceInternet:
		return u.InternetUptime
	default:
		return 0
	}
}

// Stat is an avg/min/max triple rounded for display.
type Stat struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summary holds scalar statistics over a record set.
type Summary struct {
	TotalRecords int  `json:"total_records"`
	Temperature  Stat `json:"temperature_c"`
	RAM          Stat `json:"ram_percent"`
	Disk         Stat `json:"disk_percent"`
	CPU          Stat `json:"cpu_percent"`
}

// SeriesPoint is one plottable sample.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// StatusPoint is one slot of a binary up/down series.
type StatusPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Up        int       `json:"up"`
}

// Metric series names.
const (
	SeriesTemperature   = "temperature_c"
	SeriesRAM           = "ram_percent"
	SeriesDisk          = "disk_percent"
	SeriesCPU           = "cpu_percent"
	SeriesPendingVideos = "pending_videos"
)

// AnalysisResult is everything a renderer needs for one history view.
type AnalysisResult struct {
	ID                 string                         `json:"id"`
	Folder             string                         `json:"folder"`
	AttemptedFiles     int                            `json:"attempted_files"`
	LoadedFiles        []string                       `json:"loaded_files"`
	Summary            Summary                        `json:"summary"`
	Uptime             UptimeStats                    `json:"uptime"`
	Events             []SystemEvent                  `json:"events"`
	EventCounts        map[EventCategory]int          `json:"event_counts"`
	MetricSeries       map[string][]SeriesPoint       `json:"metric_series"`
	ServiceSeries      map[Service][]StatusPoint      `json:"service_series"`
	SystemAvailability []StatusPoint                  `json:"system_availability"`
	Transitions        map[Service][]StatusTransition `json:"transitions"`
	GeneratedAt        time.Time                      `json:"generated_at"`
}
