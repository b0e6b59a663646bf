// Package engine turns tracked objects and zones into overlays and alarm
// events using debounce, cooldown and dwell rules.
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
	"perimeterwatch/internal/geometry"
	"perimeterwatch/internal/track"
	"perimeterwatch/internal/zone"
)

// Engine classifies frame sequences. It holds no per-run state and may be
// shared between runs.
type Engine struct {
	params Params
	newID  func() string
	logger *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithIDGenerator replaces the UUID generator used for event ids.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// WithLogger sets the logger used for per-run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an Engine with the given thresholds.
func New(p Params, opts ...Option) *Engine {
	e := &Engine{params: p, newID: uuid.NewString, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Params returns the thresholds the engine was built with.
func (e *Engine) Params() Params { return e.params }

// Input is one classification job. Frames must already be ordered by
// timestamp.
type Input struct {
	VideoID string
	Width   int
	Height  int
	Frames  []track.Frame
	Zones   *zone.Set
}

// Output holds everything a run produced.
type Output struct {
	Overlays []analysis.OverlayFrame
	Events   []alarm.Event
	States   map[string]*ObjectState
}

// Classify runs the state machine over in.Frames in order.
func (e *Engine) Classify(in Input) Output {
	out := Output{
		Overlays: make([]analysis.OverlayFrame, 0, len(in.Frames)),
		States:   make(map[string]*ObjectState),
	}
	zones := in.Zones
	if zones == nil {
		zones = &zone.Set{}
	}

	for _, f := range in.Frames {
		of := analysis.OverlayFrame{
			FrameID:   f.FrameID,
			Timestamp: f.Timestamp,
			Objects:   make([]analysis.OverlayObject, 0, len(f.Objects)),
		}
		for _, obj := range f.Objects {
			m := zones.Match(geometry.FootPoint(obj.BoxNorm, in.Width, in.Height))
			of.Objects = append(of.Objects, overlayFor(obj, m))

			// Objects without an id cannot be followed across frames.
			if obj.ID == "" {
				continue
			}
			st, ok := out.States[obj.ID]
			if !ok {
				st = newObjectState()
				out.States[obj.ID] = st
			}
			if st.stepCore(m.InCore, f.Timestamp, e.params) {
				out.Events = append(out.Events, e.event(in.VideoID, obj, f.Timestamp, alarm.Critical))
			}
			if st.stepWarning(m.InWarning, m.InCore, f.Timestamp, e.params) {
				out.Events = append(out.Events, e.event(in.VideoID, obj, f.Timestamp, alarm.Warning))
			}
		}
		out.Overlays = append(out.Overlays, of)
	}
	return out
}

func (e *Engine) event(videoID string, obj track.Object, ts float64, lvl alarm.ThreatLevel) alarm.Event {
	e.logger.Debug("alarm", "video_id", videoID, "object_id", obj.ID, "level", lvl, "ts", ts)
	return alarm.Event{
		EventID:        e.newID(),
		VideoID:        videoID,
		VideoTimestamp: ts,
		ObjectType:     obj.Class,
		ThreatLevel:    lvl,
	}
}

func overlayFor(obj track.Object, m zone.Match) analysis.OverlayObject {
	o := analysis.OverlayObject{
		ID:      obj.ID,
		Class:   obj.Class,
		BoxNorm: obj.BoxNorm,
		Color:   analysis.ColorGreen,
	}
	var lvl alarm.ThreatLevel
	switch {
	case m.InCore:
		lvl, o.Color = alarm.Critical, analysis.ColorRed
	case m.InWarning:
		lvl, o.Color = alarm.Warning, analysis.ColorOrange
	default:
		return o
	}
	o.AlarmLevel = &lvl
	if m.ZoneID != "" {
		id := m.ZoneID
		o.ZoneID = &id
	}
	if m.ZoneName != "" {
		name := m.ZoneName
		o.ZoneName = &name
	}
	return o
}
