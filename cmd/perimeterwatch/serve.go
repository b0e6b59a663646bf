package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"perimeterwatch/internal/admin"
	"perimeterwatch/internal/config"
	"perimeterwatch/internal/engine"
	"perimeterwatch/internal/logging"
	"perimeterwatch/internal/metrics"
	"perimeterwatch/internal/store"
)

var (
	srvAddr       string
	srvResultsDir string
	srvDBPath     string
	srvConfig     string
	srvSchema     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve overlays, classification and alarms over HTTP",
	Long:  "serve exposes the results directory and the alarm store through a JSON API with Prometheus metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(srvConfig, srvSchema)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		resultsDir := srvResultsDir
		if resultsDir == "" {
			resultsDir = cfg.ResultsDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		m := metrics.New()
		var repo admin.Repository
		if srvDBPath != "" {
			st, err := store.Open(srvDBPath)
			if err != nil {
				return err
			}
			defer st.Close()
			if n, err := st.Count(ctx); err == nil {
				m.SetStoredAlarms(n)
			}
			repo = st
		}

		eng := engine.New(cfg.Params(), engine.WithLogger(logger))
		srv := admin.NewServer(resultsDir, eng, repo, m)
		if err := srv.Start(ctx, srvAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Println("[Main] perimeterwatch server stopped.")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&srvResultsDir, "results-dir", "", "Directory holding raw tracks and analysis artifacts (default from config)")
	serveCmd.Flags().StringVar(&srvDBPath, "db", "", "SQLite alarm and zone store; alarm and zone endpoints are disabled without it")
	serveCmd.Flags().StringVar(&srvConfig, "config", "", "Path to engine configuration YAML")
	serveCmd.Flags().StringVar(&srvSchema, "schema", "", "Path to CUE schema file (default embedded)")
}
