package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"time"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

// ReplayArtifact plays overlay frames to ow, pacing them by their video
// timestamps. Events are delivered to aw once playback reaches their
// timestamp; aw may be nil. A speed >0 accelerates playback. If speed <= 0,
// no artificial delay is inserted.
func ReplayArtifact(ctx context.Context, art *analysis.Artifact, events []alarm.Event, ow OverlayWriter, aw AlarmWriter, speed float64) error {
	pending := append([]alarm.Event(nil), events...)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].VideoTimestamp < pending[j].VideoTimestamp })

	prev := 0.0
	for i, f := range art.Overlays {
		if i > 0 && speed > 0 {
			if err := pause(ctx, f.Timestamp-prev, speed); err != nil {
				return err
			}
		}
		if err := ow.WriteOverlay(f); err != nil {
			return err
		}
		for len(pending) > 0 && pending[0].VideoTimestamp <= f.Timestamp {
			if aw != nil {
				if err := aw.WriteAlarm(pending[0]); err != nil {
					return err
				}
			}
			pending = pending[1:]
		}
		prev = f.Timestamp
	}
	if aw != nil {
		return WriteAlarms(aw, pending)
	}
	return nil
}

// ReplayAlarmLog replays alarm events from a JSONL stream to writer.
func ReplayAlarmLog(ctx context.Context, r io.Reader, writer AlarmWriter, speed float64) error {
	dec := json.NewDecoder(r)
	prev := -1.0
	for {
		var e alarm.Event
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if prev >= 0 && speed > 0 {
			if err := pause(ctx, e.VideoTimestamp-prev, speed); err != nil {
				return err
			}
		}
		if err := writer.WriteAlarm(e); err != nil {
			return err
		}
		prev = e.VideoTimestamp
	}
}

// ReadAlarmLog loads every event of a JSONL alarm file.
func ReadAlarmLog(path string) ([]alarm.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var events []alarm.Event
	err = ReplayAlarmLog(context.Background(), f, collector{&events}, 0)
	return events, err
}

type collector struct{ events *[]alarm.Event }

func (c collector) WriteAlarm(e alarm.Event) error {
	*c.events = append(*c.events, e)
	return nil
}

func pause(ctx context.Context, seconds, speed float64) error {
	d := time.Duration(seconds / speed * float64(time.Second))
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
