package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Limit is a HIGH/CRITICAL pair for one metric.
type Limit struct {
	High     float64 `yaml:"high"`
	Critical float64 `yaml:"critical"`
}

// Thresholds is the threshold pack used by the event detector.
type Thresholds struct {
	Temperature Limit `yaml:"temperature"`
	RAM         Limit `yaml:"ram"`
	Disk        Limit `yaml:"disk"`
}

// DefaultThresholds returns the limits the dashboard shipped with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: Limit{High: 80, Critical: 85},
		RAM:         Limit{High: 80, Critical: 95},
		Disk:        Limit{High: 85, Critical: 95},
	}
}

// LoadThresholds reads a YAML threshold pack over the defaults. An empty path or
// a missing file yields the defaults.
func LoadThresholds(path string, logger *slog.Logger) (Thresholds, error) {
	if logger == nil {
		logger = slog.Default()
	}
	th := DefaultThresholds()
	if path == "" {
		return th, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("threshold pack not found, using defaults", slog.String("path", path))
			return th, nil
		}
		return th, fmt.Errorf("read threshold pack: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return DefaultThresholds(), fmt.Errorf("parse threshold pack: %w", err)
	}
	if err := th.Validate(); err != nil {
		return DefaultThresholds(), err
	}
	return th, nil
}

// Validate checks every pair is ordered.
func (t Thresholds) Validate() error {
	for name, limit := range map[string]Limit{"temperature": t.Temperature, "ram": t.RAM, "disk": t.Disk} {
		if limit.High >= limit.Critical {
			return fmt.Errorf("threshold %s: high (%v) must be below critical (%v)", name, limit.High, limit.Critical)
		}
	}
	return nil
}
