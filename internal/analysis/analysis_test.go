package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/zone"
)

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v1.json")
	lvl := alarm.Critical
	zid := "c1"
	in := &Artifact{
		VideoID: "v1",
		Width:   1280,
		Height:  720,
		FPS:     25,
		Overlays: []OverlayFrame{{
			FrameID: 0,
			Objects: []OverlayObject{{ID: "a", AlarmLevel: &lvl, Color: ColorRed, ZoneID: &zid}},
		}},
		Zones: []zone.Zone{{ID: "c1", Type: zone.Core, Points: [][2]float64{{0, 0}, {1, 0}, {1, 1}}}},
	}
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	obj := out.Overlays[0].Objects[0]
	if obj.Level() != alarm.Critical || obj.ZoneName != nil || *obj.ZoneID != "c1" {
		t.Fatalf("unexpected overlay object: %+v", obj)
	}
	if len(out.Zones) != 1 || out.Zones[0].Type != zone.Core {
		t.Fatalf("unexpected zones: %+v", out.Zones)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact in %s, found %d entries", dir, len(entries))
	}
}

func TestWriteFileFailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	// A directory at the destination makes the rename fail.
	dest := filepath.Join(dir, "v1.json")
	if err := os.MkdirAll(filepath.Join(dest, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(dest, &Artifact{VideoID: "v1"}); err == nil {
		t.Fatalf("expected rename onto a non-empty directory to fail")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
