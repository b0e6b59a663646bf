package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

type collectWriter struct {
	frames []analysis.OverlayFrame
	alarms []alarm.Event
	order  []string
}

func (c *collectWriter) WriteOverlay(f analysis.OverlayFrame) error {
	c.frames = append(c.frames, f)
	c.order = append(c.order, "frame")
	return nil
}

func (c *collectWriter) WriteAlarm(e alarm.Event) error {
	c.alarms = append(c.alarms, e)
	c.order = append(c.order, "alarm:"+e.EventID)
	return nil
}

func artifact(n int, fps float64) *analysis.Artifact {
	a := &analysis.Artifact{VideoID: "v1"}
	for i := 0; i < n; i++ {
		a.Overlays = append(a.Overlays, analysis.OverlayFrame{FrameID: i, Timestamp: float64(i) / fps})
	}
	return a
}

func TestReplayArtifactInterleavesAlarms(t *testing.T) {
	cw := &collectWriter{}
	events := []alarm.Event{
		{EventID: "late", VideoTimestamp: 9},
		{EventID: "early", VideoTimestamp: 1},
	}
	if err := ReplayArtifact(context.Background(), artifact(3, 1), events, cw, cw, 0); err != nil {
		t.Fatalf("ReplayArtifact: %v", err)
	}
	want := []string{"frame", "frame", "alarm:early", "frame", "alarm:late"}
	if len(cw.order) != len(want) {
		t.Fatalf("order = %v, want %v", cw.order, want)
	}
	for i := range want {
		if cw.order[i] != want[i] {
			t.Fatalf("order = %v, want %v", cw.order, want)
		}
	}
}

func TestReplayArtifactCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw := &collectWriter{}
	err := ReplayArtifact(ctx, artifact(3, 1), nil, cw, nil, 1)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(cw.frames) != 1 {
		t.Fatalf("expected playback to stop after the first frame, got %d", len(cw.frames))
	}
}

func TestReplayArtifactPaced(t *testing.T) {
	cw := &collectWriter{}
	start := time.Now()
	if err := ReplayArtifact(context.Background(), artifact(3, 10), nil, cw, nil, 1); err != nil {
		t.Fatalf("ReplayArtifact: %v", err)
	}
	if took := time.Since(start); took < 150*time.Millisecond {
		t.Fatalf("playback finished too fast: %v", took)
	}
}

func TestReplayAlarmLog(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range []alarm.Event{{EventID: "a", VideoTimestamp: 0}, {EventID: "b", VideoTimestamp: 1}} {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	if err := ReplayAlarmLog(context.Background(), &buf, cw, 0); err != nil {
		t.Fatalf("ReplayAlarmLog: %v", err)
	}
	if len(cw.alarms) != 2 || cw.alarms[1].EventID != "b" {
		t.Fatalf("unexpected alarms: %+v", cw.alarms)
	}
}

func TestReadAlarmLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alarms.jsonl")
	fw, err := NewFileWriter(path, "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteAlarms([]alarm.Event{{EventID: "x", ThreatLevel: alarm.Critical}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	fw.Close()
	events, err := ReadAlarmLog(path)
	if err != nil {
		t.Fatalf("ReadAlarmLog: %v", err)
	}
	if len(events) != 1 || events[0].ThreatLevel != alarm.Critical {
		t.Fatalf("unexpected events: %+v", events)
	}
}
