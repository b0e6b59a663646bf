package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
	"perimeterwatch/internal/engine"
)

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	if err := w.WriteAlarm(alarm.Event{EventID: "e1", ThreatLevel: alarm.Critical}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var got alarm.Event
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if got.EventID != "e1" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestColorStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{params: engine.DefaultParams(), out: buf}
	e := alarm.Event{EventID: "e1", VideoID: "v1", VideoTimestamp: 0.36, ObjectType: "Person", ThreatLevel: alarm.Critical}
	if err := w.WriteAlarm(e); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Alarm rules") || !strings.Contains(output, "debounce frames:   10") {
		t.Fatalf("overview not printed: %q", output)
	}
	if !strings.Contains(output, "CRITICAL") || !strings.Contains(output, "video=v1") {
		t.Fatalf("alarm line missing: %q", output)
	}

	buf.Reset()
	if err := w.WriteAlarm(e); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Alarm rules") {
		t.Fatalf("overview printed more than once")
	}
}

func TestColorStdoutWriterOverlay(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{out: buf}
	name := "Gate"
	f := analysis.OverlayFrame{FrameID: 3, Timestamp: 0.12, Objects: []analysis.OverlayObject{
		{ID: "a", Class: "Person", Color: analysis.ColorRed, ZoneName: &name},
	}}
	if err := w.WriteOverlay(f); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "frame=3") || !strings.Contains(buf.String(), "Person(a)@Gate") {
		t.Fatalf("unexpected overlay line: %q", buf.String())
	}
}
