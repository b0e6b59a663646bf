package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"perimeterwatch/internal/config"
	"perimeterwatch/internal/logging"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "perimeterwatch",
	Short:         "Perimeter intrusion analysis toolkit",
	Long:          "perimeterwatch turns tracked detections into zone overlays and intrusion alarms.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Flags win over the config file.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, format := cfg.LogLevel, cfg.LogFormat
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	logger, err := logging.New(os.Stderr, level, format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json); overrides config")
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
}
