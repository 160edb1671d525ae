package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/camwatch/history-engine/internal/api"
	"github.com/camwatch/history-engine/internal/cache"
	"github.com/camwatch/history-engine/internal/config"
	"github.com/camwatch/history-engine/internal/engine"
	"github.com/camwatch/history-engine/internal/metrics"
	"github.com/camwatch/history-engine/internal/publish"
	"github.com/camwatch/history-engine/internal/repo"
	"github.com/camwatch/history-engine/internal/services"
	"github.com/camwatch/history-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting history-engine",
		slog.String("grpc_address", cfg.Server.Address),
		slog.String("http_address", cfg.Server.HTTPAddress),
		slog.String("source", cfg.Source.Kind),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	loc, err := cfg.Analysis.LoadLocation()
	if err != nil {
		logger.Error("invalid analysis location", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		cacheProvider = cache.NewMemoryProvider()
	}
	defer cacheProvider.Close()

	source, err := newSource(cfg, cacheProvider, loc, logger)
	if err != nil {
		logger.Error("failed to create report source", slog.Any("error", err))
		os.Exit(1)
	}

	thresholds, err := engine.LoadThresholds(cfg.Thresholds.Path, logger)
	if err != nil {
		logger.Error("failed to load threshold pack", slog.Any("error", err))
		os.Exit(1)
	}

	var publisher engine.EventPublisher
	if cfg.Publish.Enabled {
		kafkaPublisher, err := publish.NewKafkaPublisher(publish.Config{
			Brokers: cfg.Publish.Brokers,
			Topic:   cfg.Publish.Topic,
			Acks:    cfg.Publish.Acks,
			Timeout: cfg.Publish.Timeout,
		}, logger)
		if err != nil {
			logger.Error("failed to create event publisher", slog.Any("error", err))
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("event feed enabled", slog.String("topic", cfg.Publish.Topic))
	}

	loader := engine.NewLoader(source, engine.LoaderOptions{
		Location:      loc,
		LookbackDays:  cfg.Analysis.LookbackDays,
		DefaultFolder: cfg.Source.DefaultFolder,
	}, logger)
	analyzer := engine.NewAnalyzer(
		cfg.Analysis.Interval(),
		thresholds,
		time.Duration(cfg.Analysis.GapMinutes)*time.Minute,
	)
	pipeline := engine.NewPipeline(logger, loader, analyzer, publisher)
	historyService := services.NewHistoryService(logger, pipeline, loc)

	grpcServer, err := api.NewGRPCServer(cfg.Server, historyService, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}
	httpServer := api.NewHTTPServer(cfg.Server, historyService, loc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("gRPC server listening", slog.String("address", grpcServer.Addr()))
		return grpcServer.Serve()
	})
	group.Go(func() error {
		logger.Info("HTTP server listening", slog.String("address", cfg.Server.HTTPAddress))
		return httpServer.Start()
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), grpcServer.GracefulTimeout())
		defer cancel()
		grpcServer.Shutdown(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown", slog.Any("error", err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("history-engine stopped", slog.Duration("p95_latency", historyService.LatencyP95()))
}

func newSource(cfg *config.Config, provider cache.Provider, loc *time.Location, logger *slog.Logger) (repo.ReportSource, error) {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return repo.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.Timeout, provider, cfg.Cache.TTL, loc, logger), nil
	default:
		return repo.NewDirSource(cfg.Source.Root)
	}
}
