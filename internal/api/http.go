package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/camwatch/history-engine/internal/config"
	"github.com/camwatch/history-engine/internal/engine"
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/utils"
)

// HistoryRunner executes history analyses for the HTTP surface.
type HistoryRunner interface {
	Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
	RunToday(ctx context.Context, folder string) (models.AnalysisResult, error)
}

type httpHandlers struct {
	runner HistoryRunner
	loc    *time.Location
	log    *slog.Logger
}

// NewRouter registers the JSON history routes plus health and metrics.
func NewRouter(runner HistoryRunner, loc *time.Location, log *slog.Logger) *mux.Router {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	h := &httpHandlers{runner: runner, loc: loc, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/history", h.history).Methods(http.MethodGet)
	v1.HandleFunc("/history/today", h.today).Methods(http.MethodGet)
	return r
}

func (h *httpHandlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *httpHandlers) history(w http.ResponseWriter, r *http.Request) {
	req, err := FromQuery(r.URL.Query(), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *httpHandlers) today(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.RunToday(r.Context(), r.URL.Query().Get(FieldFolder))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *httpHandlers) fail(w http.ResponseWriter, err error) {
	code := HTTPStatus(err)
	switch {
	case code == StatusClientClosedRequest:
		h.log.Debug("history request cancelled by client", slog.Any("error", err))
	case code >= http.StatusInternalServerError:
		h.log.Error("history request failed", slog.Any("error", err))
	}
	writeError(w, code, utils.UserMessage(err))
}

// StatusClientClosedRequest is returned when the caller went away mid-load.
const StatusClientClosedRequest = 499

// HTTPStatus maps analysis errors onto response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoReports), errors.Is(err, engine.ErrNoDataInRange):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// HTTPServer serves the JSON API next to the gRPC listener.
type HTTPServer struct {
	cfg    config.ServerConfig
	server *http.Server
}

// NewHTTPServer wraps the router with CORS, panic recovery and optional access logging.
func NewHTTPServer(cfg config.ServerConfig, runner HistoryRunner, loc *time.Location, log *slog.Logger) *HTTPServer {
	var handler http.Handler = NewRouter(runner, loc, log)
	handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)(handler)
	handler = handlers.RecoveryHandler()(handler)
	if cfg.AccessLog {
		handler = handlers.CombinedLoggingHandler(os.Stdout, handler)
	}
	return &HTTPServer{
		cfg: cfg,
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
	}
}

// Handler exposes the wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is invoked.
func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
