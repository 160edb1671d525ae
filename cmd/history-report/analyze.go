package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/camwatch/history-engine/internal/api"
	"github.com/camwatch/history-engine/internal/cache"
	"github.com/camwatch/history-engine/internal/config"
	"github.com/camwatch/history-engine/internal/engine"
	"github.com/camwatch/history-engine/internal/models"
	"github.com/camwatch/history-engine/internal/repo"
	"github.com/camwatch/history-engine/internal/utils"
)

type analyzeOptions struct {
	configPath string
	folder     string
	start      string
	end        string
	today      bool
	output     string
	root       string
	baseURL    string
	limit      int
	verbose    bool
}

func analyzeCmd() *cobra.Command {
	opts := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse a date range of daily reports",
		Long: `Analyse the daily reports in a folder. With no bounds the last 30 days up to
today are read; a lone --start runs to today and a lone --end looks back 30 days.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			return runAnalyze(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.folder, "folder", "", "Report folder (defaults to source.defaultFolder)")
	cmd.Flags().StringVar(&opts.start, "start", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.today, "today", false, "Analyse today only")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")
	cmd.Flags().StringVar(&opts.root, "root", "", "Read reports from this directory instead of the configured source")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Fetch reports from this dashboard URL instead of the configured source")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum number of events shown in table output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log skipped files and timings to stderr")
	cmd.MarkFlagsMutuallyExclusive("today", "start")
	cmd.MarkFlagsMutuallyExclusive("today", "end")
	cmd.MarkFlagsMutuallyExclusive("root", "base-url")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	if opts.output != "table" && opts.output != "json" {
		return fmt.Errorf("unsupported output %q: use table or json", opts.output)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}
	logger := utils.NewLoggerTo(cmd.ErrOrStderr(), level, false)

	loc, err := cfg.Analysis.LoadLocation()
	if err != nil {
		return err
	}
	source, err := buildSource(cfg, opts, loc, logger)
	if err != nil {
		return err
	}
	thresholds, err := engine.LoadThresholds(cfg.Thresholds.Path, logger)
	if err != nil {
		return err
	}

	loader := engine.NewLoader(source, engine.LoaderOptions{
		Location:      loc,
		LookbackDays:  cfg.Analysis.LookbackDays,
		DefaultFolder: cfg.Source.DefaultFolder,
	}, logger)
	analyzer := engine.NewAnalyzer(cfg.Analysis.Interval(), thresholds, time.Duration(cfg.Analysis.GapMinutes)*time.Minute)
	pipeline := engine.NewPipeline(logger, loader, analyzer, nil)

	var result models.AnalysisResult
	if opts.today {
		result, err = pipeline.RunToday(cmd.Context(), opts.folder)
	} else {
		req, reqErr := api.FromQuery(map[string][]string{
			api.FieldFolder: {opts.folder},
			api.FieldStart:  {opts.start},
			api.FieldEnd:    {opts.end},
		}, loc)
		if reqErr != nil {
			return reqErr
		}
		result, err = pipeline.Run(cmd.Context(), req)
	}
	if err != nil {
		return errors.New(utils.UserMessage(err))
	}

	if opts.output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	renderReport(cmd.OutOrStdout(), result, opts.limit, loc)
	return nil
}

func buildSource(cfg *config.Config, opts analyzeOptions, loc *time.Location, logger *slog.Logger) (repo.ReportSource, error) {
	switch {
	case opts.root != "":
		return repo.NewDirSource(opts.root)
	case opts.baseURL != "":
		return repo.NewHTTPSource(opts.baseURL, cfg.Source.Timeout, cache.NoopProvider{}, 0, loc, logger), nil
	case cfg.Source.Kind == config.SourceHTTP:
		return repo.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.Timeout, cache.NoopProvider{}, 0, loc, logger), nil
	default:
		return repo.NewDirSource(cfg.Source.Root)
	}
}
