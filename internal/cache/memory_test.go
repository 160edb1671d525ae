package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProviderExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryProvider()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "report_2025-01-01.csv", []byte("a,b"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get(ctx, "report_2025-01-01.csv")
	if err != nil || string(got) != "a,b" {
		t.Fatalf("expected cached value, got %q (%v)", got, err)
	}

	got[0] = 'z'
	again, _ := m.Get(ctx, "report_2025-01-01.csv")
	if string(again) != "a,b" {
		t.Fatalf("callers must not be able to mutate cached bytes")
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "report_2025-01-01.csv"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
}

func TestMemoryProviderSetSweepsExpiredKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryProvider()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "report:metrics/report_2024-12-30.csv", []byte("old"), time.Minute)
	_ = m.Set(ctx, "report:metrics/report_2024-12-31.csv", []byte("kept"), time.Hour)
	now = now.Add(2 * time.Minute)
	_ = m.Set(ctx, "report:metrics/report_2025-01-01.csv", []byte("new"), time.Minute)

	if len(m.data) != 2 {
		t.Fatalf("expected the expired entry to be swept, have %d entries", len(m.data))
	}
	if _, ok := m.data["report:metrics/report_2024-12-30.csv"]; ok {
		t.Fatalf("expired entry survived Set")
	}
	if got, err := m.Get(ctx, "report:metrics/report_2024-12-31.csv"); err != nil || string(got) != "kept" {
		t.Fatalf("unexpired entry lost: %q (%v)", got, err)
	}
}

func TestNoopProviderNeverStores(t *testing.T) {
	var p Provider = NoopProvider{}
	_ = p.Set(context.Background(), "k", []byte("v"), time.Minute)
	if _, err := p.Get(context.Background(), "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("noop provider must always miss")
	}
}
