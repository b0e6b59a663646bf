// Package sink delivers alarm events and overlay frames to their consumers.
package sink

import (
	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

// AlarmWriter handles alarm events.
type AlarmWriter interface {
	WriteAlarm(alarm.Event) error
}

// Optional: alarm writers may support batch mode.
type batchAlarmWriter interface {
	WriteAlarms([]alarm.Event) error
}

// OverlayWriter handles overlay frames during replay.
type OverlayWriter interface {
	WriteOverlay(analysis.OverlayFrame) error
}

// WriteAlarms sends events to w, in one call when w supports batches.
func WriteAlarms(w AlarmWriter, events []alarm.Event) error {
	if len(events) == 0 {
		return nil
	}
	if bw, ok := w.(batchAlarmWriter); ok {
		return bw.WriteAlarms(events)
	}
	for _, e := range events {
		if err := w.WriteAlarm(e); err != nil {
			return err
		}
	}
	return nil
}
