package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history-report",
		Short: "Analyse camera appliance metric history from daily CSV reports",
		Long: `history-report loads the daily report_<YYYY-MM-DD>.csv files written by the
camera appliance and prints uptime, detected events, service transitions and
summary statistics for the requested date range.

Examples:
  history-report analyze --folder ./metrics/                    # last 30 days
  history-report analyze --start 2025-03-01 --end 2025-03-07    # explicit range
  history-report analyze --today -o json                        # today, as JSON`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to configuration file")
	cmd.AddCommand(analyzeCmd())
	return cmd
}
