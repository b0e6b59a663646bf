package main

import (
	"log"

	"github.com/spf13/cobra"

	"perimeterwatch/internal/config"
	"perimeterwatch/internal/dashboard"
)

var (
	dashOut    string
	dashConfig string
	dashSchema string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards for the GreptimeDB alarm table",
	Long:  "dashboard renders Grafana dashboard JSON; the datasource uid is read from GREPTIMEDB_DATASOURCE_UID.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(dashConfig, dashSchema)
		if err != nil {
			return err
		}
		if err := dashboard.Render(dashOut, dashboard.Params{Table: cfg.Greptime.Table}); err != nil {
			return err
		}
		log.Printf("[Dashboard] rendered to %s", dashOut)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashOut, "out", "build", "Output directory")
	dashboardCmd.Flags().StringVar(&dashConfig, "config", "", "Path to engine configuration YAML")
	dashboardCmd.Flags().StringVar(&dashSchema, "schema", "", "Path to CUE schema file (default embedded)")
}
