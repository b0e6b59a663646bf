package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
	"perimeterwatch/internal/config"
	"perimeterwatch/internal/sink"
	"perimeterwatch/internal/store"
)

var (
	replayInput  string
	replayAlarms string
	replayDBPath string
	replaySpeed  float64
	replayTUI    bool
	replayFormat string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an analysis artifact",
	Long:  "replay plays overlay frames and alarms back at video pace, to STDOUT or an interactive TUI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if err := checkFormat(replayFormat); err != nil {
			return err
		}
		art, err := analysis.ReadFile(replayInput)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := replayEvents(ctx, art.VideoID)
		if err != nil {
			return err
		}

		if !replayTUI {
			w := newStdoutWriter(config.Default(), replayFormat)
			return replayUntilDone(ctx, nil, func(ctx context.Context) error {
				return sink.ReplayArtifact(ctx, art, events, w, w, replaySpeed)
			})
		}

		tw := sink.NewTUIWriter(art)
		err = replayUntilDone(ctx, tw.Done(), func(ctx context.Context) error {
			return sink.ReplayArtifact(ctx, art, events, tw, tw, replaySpeed)
		})
		if err != nil {
			tw.Close()
			return err
		}
		tw.Finish()
		select {
		case <-tw.Done():
		case <-ctx.Done():
			tw.Close()
		}
		return nil
	},
}

// replayUntilDone runs play with a context that is also cancelled once done
// closes, so quitting the viewer stops pacing. Cancellation is a normal exit.
func replayUntilDone(ctx context.Context, done <-chan struct{}, play func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := play(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// replayEvents loads alarms from the JSONL log or the SQLite store.
func replayEvents(ctx context.Context, videoID string) ([]alarm.Event, error) {
	switch {
	case replayAlarms != "":
		return sink.ReadAlarmLog(replayAlarms)
	case replayDBPath != "":
		st, err := store.Open(replayDBPath)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		var events []alarm.Event
		for page := 1; ; page++ {
			batch, total, err := st.List(ctx, store.Filter{Page: page, PageSize: store.MaxPageSize, VideoID: videoID})
			if err != nil {
				return nil, err
			}
			events = append(events, batch...)
			if len(batch) == 0 || len(events) >= total {
				return events, nil
			}
		}
	}
	return nil, nil
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to an analysis artifact (JSON)")
	replayCmd.Flags().StringVar(&replayAlarms, "alarms", "", "Alarm log (JSONL) written by classify --log-file")
	replayCmd.Flags().StringVar(&replayDBPath, "db", "", "Read the video's alarms from this SQLite store")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 disables pacing)")
	replayCmd.Flags().BoolVar(&replayTUI, "tui", false, "Show the replay in an interactive terminal UI")
	replayCmd.Flags().StringVar(&replayFormat, "format", "", "STDOUT format: json or color (default color on a terminal)")
	replayCmd.MarkFlagRequired("input")
}
