package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/camwatch/history-engine/internal/config"
	"github.com/camwatch/history-engine/internal/engine"
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

type stubRunner struct {
	lastReq    models.AnalysisRequest
	lastFolder string
	err        error
}

func (s *stubRunner) Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	s.lastReq = req
	if s.err != nil {
		return models.AnalysisResult{}, s.err
	}
	return models.AnalysisResult{ID: "analysis-1", Folder: req.Folder}, nil
}

func (s *stubRunner) RunToday(ctx context.Context, folder string) (models.AnalysisResult, error) {
	s.lastFolder = folder
	if s.err != nil {
		return models.AnalysisResult{}, s.err
	}
	return models.AnalysisResult{ID: "today-1", Folder: folder}, nil
}

func serve(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHistoryRoute(t *testing.T) {
	runner := &stubRunner{}
	router := NewRouter(runner, time.UTC, nil)

	rec, body := serve(t, router, "/api/v1/history?folder=cam&start=2025-03-01&end=2025-03-02")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["id"] != "analysis-1" || body["folder"] != "cam" {
		t.Fatalf("unexpected body %v", body)
	}
	if runner.lastReq.Range.Start == nil || runner.lastReq.Range.End == nil {
		t.Fatalf("expected both bounds forwarded, got %+v", runner.lastReq.Range)
	}
}

func TestHistoryRouteBadDate(t *testing.T) {
	router := NewRouter(&stubRunner{}, time.UTC, nil)
	rec, body := serve(t, router, "/api/v1/history?start=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestHistoryRouteNoData(t *testing.T) {
	msg := "no CSV files found in cam: tried 31 files"
	runner := &stubRunner{err: utils.NewAppError("engine.Load", msg, engine.ErrNoReports)}
	router := NewRouter(runner, time.UTC, nil)

	rec, body := serve(t, router, "/api/v1/history/today?folder=cam")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body["error"] != msg {
		t.Fatalf("expected user message, got %v", body["error"])
	}
	if runner.lastFolder != "cam" {
		t.Fatalf("expected folder forwarded, got %q", runner.lastFolder)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("wrap: %w", engine.ErrNoDataInRange): http.StatusNotFound,
		fmt.Errorf("wrap: %w", engine.ErrInvalidRange):  http.StatusBadRequest,
		context.DeadlineExceeded:                        http.StatusGatewayTimeout,
		fmt.Errorf("load: %w", context.Canceled):        StatusClientClosedRequest,
		fmt.Errorf("boom"):                              http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := HTTPStatus(err); got != want {
			t.Fatalf("%v: expected %d, got %d", err, want, got)
		}
	}
}

func TestHistoryRouteClientCancelIsNotAnError(t *testing.T) {
	var logs bytes.Buffer
	runner := &stubRunner{err: fmt.Errorf("fetch report: %w", context.Canceled)}
	router := NewRouter(runner, time.UTC, utils.NewLoggerTo(&logs, "debug", false))

	rec, _ := serve(t, router, "/api/v1/history?folder=cam")
	if rec.Code != StatusClientClosedRequest {
		t.Fatalf("expected %d, got %d", StatusClientClosedRequest, rec.Code)
	}
	if strings.Contains(logs.String(), "level=ERROR") {
		t.Fatalf("client cancellation must not log at error level:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "cancelled by client") {
		t.Fatalf("expected debug log for cancellation:\n%s", logs.String())
	}
}

func TestHTTPServerMiddleware(t *testing.T) {
	srv := NewHTTPServer(config.ServerConfig{HTTPAddress: ":0", AllowedOrigins: []string{"http://dashboard.local"}}, &stubRunner{}, time.UTC, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://dashboard.local" {
		t.Fatalf("expected CORS header, got %q", got)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", rec.Code)
	}
}
