package models

import "time"

// MetricRecord is one normalised sample from a daily device report.
type MetricRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	CPUPercent     float64   `json:"cpu_percent"`
	RAMPercent     float64   `json:"ram_percent"`
	DiskPercent    float64   `json:"disk_percent"`
	TemperatureC   float64   `json:"temperature_c"`
	ARPDeviceCount int       `json:"arp_device_count"`
	PendingVideos  int       `json:"pending_videos"`
	APCStatus      string    `json:"apc_status"`
	RTSPStatus     string    `json:"rtsp_status"`
	InternetStatus string    `json:"internet_status"`
	Eth0Status     string    `json:"eth0_status"`
	RootMountMode  string    `json:"root_mount_mode"`
}

// StatusUnknown is substituted for any missing categorical value.
const StatusUnknown = "unknown"

// Status returns the raw categorical status recorded for a service.
func (r MetricRecord) Status(service Service) string {
	switch service {
	case ServiceAPC:
		return r.APCStatus
	case ServiceRTSP:
		return r.RTSPStatus
	case ServiceInternet:
		return r.InternetStatus
	default:
		return StatusUnknown
	}
}

// Healthy reports whether the record shows the service in its healthy state.
func (r MetricRecord) Healthy(service Service) bool {
	return service.Healthy(r.Status(service))
}
