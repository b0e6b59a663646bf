package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"perimeterwatch/internal/config"
	"perimeterwatch/internal/engine"
	"perimeterwatch/internal/logging"
	"perimeterwatch/internal/sink"
	"perimeterwatch/internal/store"
	"perimeterwatch/internal/zone"
)

const rawTracksSuffix = "_raw_tracks.json"

var (
	clsTracks    string
	clsZones     string
	clsVideoID   string
	clsVideoPath string
	clsOut       string
	clsConfig    string
	clsSchema    string
	clsLogFile   string
	clsPrintOnly bool
	clsFormat    string
	clsDBPath    string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a raw track artifact against perimeter zones",
	Long:  "classify applies the zone rules to every frame of a raw track artifact, writes the analysis artifact and emits alarm events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(clsFormat); err != nil {
			return err
		}
		cfg, err := config.Load(clsConfig, clsSchema)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		var zones []zone.Zone
		if clsZones != "" {
			if zones, err = zone.Load(clsZones); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		out := clsOut
		if out == "" {
			out = defaultOutPath(cfg.ResultsDir, clsTracks, clsVideoID)
		}
		eng := engine.New(cfg.Params(), engine.WithLogger(logger))
		res, err := eng.Run(ctx, engine.Request{
			TracksPath: clsTracks,
			Zones:      zones,
			VideoID:    clsVideoID,
			VideoPath:  clsVideoPath,
			OutPath:    out,
		})
		if err != nil {
			return err
		}

		aw, ow, cleanup, err := newWriters(cfg, clsPrintOnly, clsFormat, clsLogFile)
		if err != nil {
			return err
		}
		defer cleanup()
		if ow != nil {
			for _, f := range res.Overlays {
				if err := ow.WriteOverlay(f); err != nil {
					return err
				}
			}
		}
		if err := sink.WriteAlarms(aw, res.Events); err != nil {
			return err
		}

		if clsDBPath != "" {
			st, err := store.Open(clsDBPath)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.ReplaceForVideo(ctx, res.VideoID, res.Events); err != nil {
				return err
			}
		}

		log.Printf("[Main] %s: %d frames, %d alarms, analysis written to %s", res.VideoID, res.Frames, res.AlarmCount, res.OutPath)
		return nil
	},
}

// defaultOutPath derives <results>/<video_id>.json, taking the id from the
// tracks file name when no override is given.
func defaultOutPath(resultsDir, tracksPath, videoID string) string {
	if videoID == "" {
		base := filepath.Base(tracksPath)
		videoID = strings.TrimSuffix(base, rawTracksSuffix)
		if videoID == base {
			videoID = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	return filepath.Join(resultsDir, videoID+".json")
}

func checkFormat(f string) error {
	switch f {
	case formatAuto, formatJSON, formatColor:
		return nil
	}
	return fmt.Errorf("unknown format %q (want json or color)", f)
}

func init() {
	classifyCmd.Flags().StringVar(&clsTracks, "tracks", "", "Path to the raw track artifact (JSON)")
	classifyCmd.Flags().StringVar(&clsZones, "zones", "", "Path to the zone definitions (JSON or YAML)")
	classifyCmd.Flags().StringVar(&clsVideoID, "video-id", "", "Override the video id recorded in the tracks")
	classifyCmd.Flags().StringVar(&clsVideoPath, "video-path", "", "Override the video path recorded in the tracks")
	classifyCmd.Flags().StringVar(&clsOut, "out", "", "Analysis artifact path (default <results_dir>/<video_id>.json)")
	classifyCmd.Flags().StringVar(&clsConfig, "config", "", "Path to engine configuration YAML")
	classifyCmd.Flags().StringVar(&clsSchema, "schema", "", "Path to CUE schema file (default embedded)")
	classifyCmd.Flags().StringVar(&clsLogFile, "log-file", "", "Path to export alarms (JSONL); overlays go to <log-file>.overlays")
	classifyCmd.Flags().BoolVar(&clsPrintOnly, "print-only", false, "Print alarms to STDOUT instead of writing to GreptimeDB")
	classifyCmd.Flags().StringVar(&clsFormat, "format", "", "STDOUT format: json or color (default color on a terminal)")
	classifyCmd.Flags().StringVar(&clsDBPath, "db", "", "SQLite alarm store; the video's alarms are replaced")
	classifyCmd.MarkFlagRequired("tracks")
}
