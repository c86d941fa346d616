package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "riskscore",
		Short: "Agent retention-risk scoring for brokerage dashboards",
		Long: `riskscore computes a retention-risk profile for every agent on a brokerage roster
from closed and pending transactions and active listings.`,
		SilenceUsage: true,
	}
)

// prepareLogger configures the global slog logger.
// level is one of "debug", "info", "warn", "warning", "error"; anything else
// falls back to info. Output is JSON written to out.
func prepareLogger(level string, out io.Writer) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	})

	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (defaults and environment only when empty)")
	rootCmd.AddCommand(serveCmd, scoreCmd)
}

// Any error while loading the configuration, compiling rules or starting the
// server terminates the process with exit code 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("riskscore", "error", err)
		os.Exit(1)
	}
}
