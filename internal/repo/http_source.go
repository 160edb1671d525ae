package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/camwatch/history-engine/internal/cache"
)

const maxReportBytes = 64 << 20

// HTTPSource fetches report files from the dashboard web server, the same path
// the browser dashboard reads them from.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Provider
	cacheTTL   time.Duration
	maxBytes   int64
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewHTTPSource constructs a source targeting baseURL. Files of past days are
// cached through provider; today's file is always fetched since it still grows.
func NewHTTPSource(baseURL string, timeout time.Duration, provider cache.Provider, ttl time.Duration, loc *time.Location, logger *slog.Logger) *HTTPSource {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      provider,
		cacheTTL:   ttl,
		maxBytes:   maxReportBytes,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// Fetch issues GET <baseURL>/<folder>/<name>.
func (s *HTTPSource) Fetch(ctx context.Context, folder, name string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("http source not initialised")
	}
	if s.baseURL == "" {
		return nil, fmt.Errorf("http source base URL not configured")
	}

	endpoint := s.resolvePath(folder, name)
	cacheable := s.cacheable(name)
	key := "report:" + endpoint
	if cacheable {
		if data, err := s.cache.Get(ctx, key); err == nil {
			return data, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("report cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	data, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return data, nil
}

func (s *HTTPSource) cacheable(name string) bool {
	day, ok := ParseReportFileName(name, s.loc)
	if !ok {
		return false
	}
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return day.Before(today)
}

func (s *HTTPSource) resolvePath(folder, name string) string {
	cleaned := path.Join("/", folder, name)
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return s.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

func (s *HTTPSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", endpoint, ErrReportNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: dashboard returned %s", endpoint, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("read %s: report exceeds %d bytes", endpoint, s.maxBytes)
	}
	return data, nil
}
