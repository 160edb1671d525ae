package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the history engine and report CLI.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Source     SourceConfig     `yaml:"source"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Logging    LoggingConfig    `yaml:"logging"`
	Cache      CacheConfig      `yaml:"cache"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ServerConfig controls the gRPC and HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	HTTPAddress     string        `yaml:"httpAddress"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	AccessLog       bool          `yaml:"accessLog"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// Source kinds.
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
)

// SourceConfig selects where daily report files are read from.
type SourceConfig struct {
	Kind          string        `yaml:"kind"`
	Root          string        `yaml:"root"`
	BaseURL       string        `yaml:"baseURL"`
	DefaultFolder string        `yaml:"defaultFolder"`
	Timeout       time.Duration `yaml:"timeout"`
}

// AnalysisConfig tunes the timeline and event computations.
type AnalysisConfig struct {
	IntervalMinutes int    `yaml:"intervalMinutes"`
	LookbackDays    int    `yaml:"lookbackDays"`
	GapMinutes      int    `yaml:"gapMinutes"`
	Location        string `yaml:"location"`
}

// Interval returns the expected sampling interval as a duration.
func (a AnalysisConfig) Interval() time.Duration {
	if a.IntervalMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(a.IntervalMinutes) * time.Minute
}

// LoadLocation resolves the configured zone used for zone-less timestamps and day bounds.
func (a AnalysisConfig) LoadLocation() (*time.Location, error) {
	switch strings.TrimSpace(a.Location) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Location)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", a.Location, err)
	}
	return loc, nil
}

// ThresholdsConfig points at an optional YAML threshold pack.
type ThresholdsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls in-memory caching of fetched report files.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// PublishConfig controls the optional Kafka event feed.
type PublishConfig struct {
	Enabled bool          `yaml:"enabled"`
	Brokers []string      `yaml:"brokers"`
	Topic   string        `yaml:"topic"`
	Acks    int           `yaml:"acks"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CAMWATCH_HISTORY_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50061",
			HTTPAddress:     ":8090",
			AllowedOrigins:  []string{"*"},
			GracefulTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Kind:          SourceDir,
			Root:          "/var/www/camera-dashboard",
			DefaultFolder: "./metrics/",
			Timeout:       5 * time.Second,
		},
		Analysis: AnalysisConfig{
			IntervalMinutes: 1,
			LookbackDays:    30,
			Location:        "Local",
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Publish: PublishConfig{
			Topic:   "camwatch.history.events",
			Acks:    1,
			Timeout: 5 * time.Second,
		},
	}
}

func (c *Config) validate() error {
	switch c.Source.Kind {
	case SourceDir:
		if c.Source.Root == "" {
			return fmt.Errorf("source.root is required for the dir source")
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.baseURL is required for the http source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Analysis.IntervalMinutes <= 0 {
		return fmt.Errorf("analysis.intervalMinutes must be positive, got %d", c.Analysis.IntervalMinutes)
	}
	if c.Analysis.LookbackDays < 0 {
		return fmt.Errorf("analysis.lookbackDays must not be negative")
	}
	if _, err := c.Analysis.LoadLocation(); err != nil {
		return err
	}
	if c.Publish.Enabled && (len(c.Publish.Brokers) == 0 || c.Publish.Topic == "") {
		return fmt.Errorf("publish requires brokers and a topic when enabled")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CAMWATCH_HISTORY_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CAMWATCH_HISTORY_SOURCE_KIND"); v != "" {
		cfg.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("CAMWATCH_HISTORY_SOURCE_ROOT"); v != "" {
		cfg.Source.Root = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_SOURCE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_DEFAULT_FOLDER"); v != "" {
		cfg.Source.DefaultFolder = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_SOURCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Timeout = d
		}
	}
	if v := os.Getenv("CAMWATCH_HISTORY_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.IntervalMinutes = n
		}
	}
	if v := os.Getenv("CAMWATCH_HISTORY_LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.LookbackDays = n
		}
	}
	if v := os.Getenv("CAMWATCH_HISTORY_GAP_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.GapMinutes = n
		}
	}
	if v := os.Getenv("CAMWATCH_HISTORY_LOCATION"); v != "" {
		cfg.Analysis.Location = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_THRESHOLDS_PATH"); v != "" {
		cfg.Thresholds.Path = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CAMWATCH_HISTORY_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("CAMWATCH_HISTORY_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CAMWATCH_HISTORY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("CAMWATCH_HISTORY_PUBLISH_ENABLED"); v != "" {
		cfg.Publish.Enabled = parseBool(v)
	}
	if v := os.Getenv("CAMWATCH_HISTORY_KAFKA_BROKERS"); v != "" {
		cfg.Publish.Brokers = splitList(v)
	}
	if v := os.Getenv("CAMWATCH_HISTORY_KAFKA_TOPIC"); v != "" {
		cfg.Publish.Topic = v
	}
}

func parseBool(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
