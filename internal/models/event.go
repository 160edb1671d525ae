package models

import "time"

// EventCategory classifies a detected event.
type EventCategory string

const (
	CategoryCritical EventCategory = "critical"
	CategoryWarning  EventCategory = "warning"
	CategoryRecovery EventCategory = "recovery"
	CategoryInfo     EventCategory = "info"
)

// EventCategories lists every category, used to seed per-category counts.
var EventCategories = []EventCategory{CategoryCritical, CategoryWarning, CategoryInfo, CategoryRecovery}

// SystemEvent records a state change detected between two consecutive samples.
type SystemEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Category  EventCategory `json:"category"`
	Source    string        `json:"source"`
	Icon      string        `json:"icon,omitempty"`
	Message   string        `json:"message"`
	Value     string        `json:"value"`
}

// LinkStatus is the segmented state of a service.
type LinkStatus string

const (
	LinkOnline  LinkStatus = "Online"
	LinkOffline LinkStatus = "Offline"
)

// StatusTransition is a contiguous run of one status for one service.
type StatusTransition struct {
	Service         Service    `json:"service"`
	Status          LinkStatus `json:"status"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	DurationMinutes int64      `json:"duration_minutes"`
}
