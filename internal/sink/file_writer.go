package sink

import (
	"encoding/json"
	"os"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

// FileWriter writes alarms and, optionally, overlay frames to JSONL files.
type FileWriter struct {
	alarmFile   *os.File
	overlayFile *os.File
	alarmEnc    *json.Encoder
	overlayEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. overlayPath may be empty to skip overlays.
func NewFileWriter(alarmPath, overlayPath string) (*FileWriter, error) {
	af, err := os.Create(alarmPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{alarmFile: af, alarmEnc: json.NewEncoder(af)}
	if overlayPath != "" {
		of, err := os.Create(overlayPath)
		if err != nil {
			af.Close()
			return nil, err
		}
		fw.overlayFile = of
		fw.overlayEnc = json.NewEncoder(of)
	}
	return fw, nil
}

// WriteAlarm logs a single alarm event.
func (f *FileWriter) WriteAlarm(e alarm.Event) error {
	return f.alarmEnc.Encode(e)
}

// WriteAlarms logs multiple alarm events.
func (f *FileWriter) WriteAlarms(events []alarm.Event) error {
	for _, e := range events {
		if err := f.WriteAlarm(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteOverlay logs an overlay frame, if enabled.
func (f *FileWriter) WriteOverlay(fr analysis.OverlayFrame) error {
	if f.overlayEnc == nil {
		return nil
	}
	return f.overlayEnc.Encode(fr)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.alarmFile != nil {
		if e := f.alarmFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.overlayFile != nil {
		if e := f.overlayFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
