package api

import (
	"net/url"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/camwatch/history-engine/internal/models"
)

func TestFromStructRequest(t *testing.T) {
	req, err := structpb.NewStruct(map[string]any{
		"folder": "./metrics/",
		"start":  "2025-03-01",
		"end":    "2025-03-04",
	})
	if err != nil {
		t.Fatalf("build struct: %v", err)
	}

	domainReq, err := FromStructRequest(req, time.UTC)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if domainReq.Folder != "./metrics/" {
		t.Fatalf("unexpected folder: %s", domainReq.Folder)
	}
	if domainReq.Range.Start == nil || !domainReq.Range.Start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", domainReq.Range.Start)
	}
	if domainReq.Range.End == nil || !domainReq.Range.End.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", domainReq.Range.End)
	}
}

func TestFromStructRequestRejectsBadFields(t *testing.T) {
	bad, _ := structpb.NewStruct(map[string]any{"start": 20250301.0})
	if _, err := FromStructRequest(bad, time.UTC); err == nil {
		t.Fatalf("expected error for numeric start")
	}
	bad, _ = structpb.NewStruct(map[string]any{"end": "03/04/2025"})
	if _, err := FromStructRequest(bad, time.UTC); err == nil {
		t.Fatalf("expected error for malformed end")
	}
	if _, err := FromStructRequest(nil, time.UTC); err == nil {
		t.Fatalf("expected error for nil request")
	}
}

func TestFromQueryOptionalBounds(t *testing.T) {
	req, err := FromQuery(url.Values{"end": {"2025-03-04"}}, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Range.Start != nil || req.Range.End == nil {
		t.Fatalf("expected only an end bound, got %+v", req.Range)
	}
}

func TestToStructResult(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	res := models.AnalysisResult{
		ID:     "analysis-1",
		Folder: "./metrics/",
		Summary: models.Summary{
			TotalRecords: 2,
			Temperature:  models.Stat{Avg: 61.5, Min: 60, Max: 63},
		},
		Events: []models.SystemEvent{
			{Timestamp: now, Category: models.CategoryCritical, Source: "apc", Message: "APC went offline", Value: "Status: stopped"},
		},
		EventCounts: map[models.EventCategory]int{models.CategoryCritical: 1},
		Transitions: map[models.Service][]models.StatusTransition{
			models.ServiceAPC: {{Service: models.ServiceAPC, Status: models.LinkOnline, Start: now, End: now.Add(time.Minute), DurationMinutes: 1}},
		},
		GeneratedAt: now,
	}

	out, err := ToStructResult(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := out.AsMap()
	if fields["id"] != "analysis-1" {
		t.Fatalf("unexpected id %v", fields["id"])
	}
	summary := fields["summary"].(map[string]any)
	if summary["total_records"].(float64) != 2 {
		t.Fatalf("unexpected summary %v", summary)
	}
	events := fields["events"].([]any)
	if len(events) != 1 || events[0].(map[string]any)["message"] != "APC went offline" {
		t.Fatalf("unexpected events %v", events)
	}
	counts := fields["event_counts"].(map[string]any)
	if counts["critical"].(float64) != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	transitions := fields["transitions"].(map[string]any)["apc"].([]any)
	if transitions[0].(map[string]any)["status"] != "Online" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
}
