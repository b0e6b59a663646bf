package sink

import (
	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

// MultiWriter fans alarms and overlays out to multiple writers.
type MultiWriter struct {
	alarmWriters   []AlarmWriter
	overlayWriters []OverlayWriter
}

// NewMultiWriter creates a new MultiWriter. Nil entries are skipped.
func NewMultiWriter(aws []AlarmWriter, ows []OverlayWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range aws {
		if w != nil {
			mw.alarmWriters = append(mw.alarmWriters, w)
		}
	}
	for _, w := range ows {
		if w != nil {
			mw.overlayWriters = append(mw.overlayWriters, w)
		}
	}
	return mw
}

// WriteAlarm sends an alarm to all alarm writers.
func (mw *MultiWriter) WriteAlarm(e alarm.Event) error {
	for _, w := range mw.alarmWriters {
		if err := w.WriteAlarm(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlarms sends multiple alarms to all writers, using batch if supported.
func (mw *MultiWriter) WriteAlarms(events []alarm.Event) error {
	for _, w := range mw.alarmWriters {
		if err := WriteAlarms(w, events); err != nil {
			return err
		}
	}
	return nil
}

// WriteOverlay sends an overlay frame to all overlay writers.
func (mw *MultiWriter) WriteOverlay(f analysis.OverlayFrame) error {
	for _, w := range mw.overlayWriters {
		if err := w.WriteOverlay(f); err != nil {
			return err
		}
	}
	return nil
}
