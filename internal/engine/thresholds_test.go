package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadThresholdsOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	body := "temperature:\n  high: 70\n  critical: 75\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	th, err := LoadThresholds(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Temperature != (Limit{High: 70, Critical: 75}) {
		t.Fatalf("expected temperature override, got %+v", th.Temperature)
	}
	if th.RAM != DefaultThresholds().RAM || th.Disk != DefaultThresholds().Disk {
		t.Fatalf("expected untouched limits to keep defaults, got %+v", th)
	}
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	th, err := LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th != DefaultThresholds() {
		t.Fatalf("expected defaults, got %+v", th)
	}
}

func TestLoadThresholdsRejectsInvertedLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("disk:\n  high: 95\n  critical: 90\n"), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	if _, err := LoadThresholds(path, nil); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestShippedThresholdPackMatchesDefaults(t *testing.T) {
	th, err := LoadThresholds(filepath.Join("..", "..", "configs", "thresholds", "default.yaml"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th != DefaultThresholds() {
		t.Fatalf("shipped pack %+v drifted from defaults %+v", th, DefaultThresholds())
	}
}
