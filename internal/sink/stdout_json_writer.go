package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

// JSONStdoutWriter prints alarms and overlays as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteAlarm outputs an alarm event in JSON format.
func (w *JSONStdoutWriter) WriteAlarm(e alarm.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteOverlay outputs an overlay frame in JSON format.
func (w *JSONStdoutWriter) WriteOverlay(f analysis.OverlayFrame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
