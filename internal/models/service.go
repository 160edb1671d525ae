package models

import (
	"fmt"
	"strings"
)

// Service identifies a monitored device service.
type Service string

const (
	ServiceAPC      Service = "apc"
	ServiceRTSP     Service = "rtsp"
	ServiceInternet Service = "internet"
)

// Services lists the monitored services in display order.
var Services = []Service{ServiceAPC, ServiceRTSP, ServiceInternet}

// ServiceState is the closed classification of a raw status string.
type ServiceState int

const (
	// StateUnrecognized covers values outside the service's vocabulary. It is unhealthy.
	StateUnrecognized ServiceState = iota
	StateHealthy
	StateDown
	StateUnknown
)

// Supervisor-managed services report these values; the internet probe reports
// connected/disconnected.
var serviceVocabulary = map[Service]map[string]ServiceState{
	ServiceAPC: {
		"running":       StateHealthy,
		"stopped":       StateDown,
		"timeout":       StateDown,
		"error":         StateDown,
		"not_available": StateDown,
		StatusUnknown:   StateUnknown,
	},
	ServiceRTSP: {
		"running":       StateHealthy,
		"stopped":       StateDown,
		"timeout":       StateDown,
		"error":         StateDown,
		"not_available": StateDown,
		StatusUnknown:   StateUnknown,
	},
	ServiceInternet: {
		"connected":    StateHealthy,
		"disconnected": StateDown,
		StatusUnknown:  StateUnknown,
	},
}

// Classify maps a raw status onto the service's closed vocabulary. Matching is exact,
// so legacy misspellings such as "connnected" fall into StateUnrecognized.
func (s Service) Classify(status string) ServiceState {
	vocab, ok := serviceVocabulary[s]
	if !ok {
		return StateUnrecognized
	}
	if state, ok := vocab[status]; ok {
		return state
	}
	return StateUnrecognized
}

// Healthy is the per-service "up" predicate.
func (s Service) Healthy(status string) bool {
	return s.Classify(status) == StateHealthy
}

// HealthyValue returns the status string that counts as up for the service.
func (s Service) HealthyValue() string {
	if s == ServiceInternet {
		return "connected"
	}
	return "running"
}

// Label is the display name used in event messages.
func (s Service) Label() string {
	switch s {
	case ServiceAPC:
		return "APC"
	case ServiceRTSP:
		return "RTSP"
	case ServiceInternet:
		return "Internet"
	default:
		return strings.ToUpper(string(s))
	}
}

// ParseService resolves a service name case-insensitively.
func ParseService(name string) (Service, error) {
	candidate := Service(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range Services {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown service %q", name)
}
