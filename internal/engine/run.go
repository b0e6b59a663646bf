package engine

import (
	"context"
	"errors"
	"fmt"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
	"perimeterwatch/internal/geometry"
	"perimeterwatch/internal/logging"
	"perimeterwatch/internal/track"
	"perimeterwatch/internal/zone"
)

// Run errors.
var (
	ErrInputNotFound  = errors.New("raw track artifact not found")
	ErrMalformedInput = errors.New("malformed track artifact")
	ErrOutputWrite    = errors.New("write analysis artifact")
)

// Request describes one run over a stored track artifact.
type Request struct {
	TracksPath string
	Zones      []zone.Zone
	// VideoID and VideoPath override the values recorded in the artifact.
	VideoID   string
	VideoPath string
	OutPath   string
}

// Result is what a completed run returns.
type Result struct {
	VideoID    string
	OutPath    string
	Overlays   []analysis.OverlayFrame
	Events     []alarm.Event
	AlarmCount int
	Frames     int
}

// Run loads the track artifact, classifies every frame and writes the
// analysis artifact to req.OutPath. Nothing is written when loading or
// validation fails.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	log := logging.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	art, err := track.Load(req.TracksPath)
	if err != nil {
		if errors.Is(err, track.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInputNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if art.Width == 0 || art.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d: %w", ErrMalformedInput, art.Width, art.Height, geometry.ErrZeroDimension)
	}

	videoID := req.VideoID
	if videoID == "" {
		videoID = art.VideoID
	}
	videoPath := req.VideoPath
	if videoPath == "" {
		videoPath = art.VideoPath
	}

	if track.SortByTimestamp(art.Tracks) {
		log.Warn("track frames were out of timestamp order, sorted", "video_id", videoID)
	}
	zones := zone.Compile(req.Zones, art.Width, art.Height, log)
	log.Info("classifying", "video_id", videoID, "frames", len(art.Tracks), "zones", zones.Len())

	out := New(e.params, WithIDGenerator(e.newID), WithLogger(log)).Classify(Input{
		VideoID: videoID,
		Width:   art.Width,
		Height:  art.Height,
		Frames:  art.Tracks,
		Zones:   zones,
	})

	result := &analysis.Artifact{
		VideoID:   videoID,
		VideoPath: videoPath,
		Width:     art.Width,
		Height:    art.Height,
		FPS:       art.FPS,
		Overlays:  out.Overlays,
		Zones:     req.Zones,
	}
	if result.Zones == nil {
		result.Zones = []zone.Zone{}
	}
	if err := analysis.WriteFile(req.OutPath, result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	log.Info("classification done", "video_id", videoID, "alarms", len(out.Events), "out", req.OutPath)

	return &Result{
		VideoID:    videoID,
		OutPath:    req.OutPath,
		Overlays:   out.Overlays,
		Events:     out.Events,
		AlarmCount: len(out.Events),
		Frames:     len(out.Overlays),
	}, nil
}
