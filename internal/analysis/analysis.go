// Package analysis holds the classification output artifact: per-frame
// overlays plus the zones they were computed against.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/geometry"
	"perimeterwatch/internal/zone"
)

// Overlay colours.
const (
	ColorGreen  = "green"
	ColorOrange = "orange"
	ColorRed    = "red"
)

// ErrNotFound is returned by ReadFile when no artifact exists.
var ErrNotFound = errors.New("analysis artifact not found")

// OverlayObject is the display record for one object in one frame.
type OverlayObject struct {
	ID         string             `json:"id"`
	Class      string             `json:"class"`
	BoxNorm    geometry.BoxNorm   `json:"box_norm"`
	AlarmLevel *alarm.ThreatLevel `json:"alarm_level"`
	Color      string             `json:"color"`
	ZoneID     *string            `json:"zone_id"`
	ZoneName   *string            `json:"zoneName"`
}

// OverlayFrame is the display record for one frame.
type OverlayFrame struct {
	FrameID   int             `json:"frame_id"`
	Timestamp float64         `json:"timestamp"`
	Objects   []OverlayObject `json:"objects"`
}

// Artifact is the stored result of a classification run.
type Artifact struct {
	VideoID   string         `json:"video_id"`
	VideoPath string         `json:"video_path"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	FPS       float64        `json:"fps"`
	Overlays  []OverlayFrame `json:"overlays"`
	Zones     []zone.Zone    `json:"zones"`
}

// Level returns the alarm level of o or the empty string.
func (o OverlayObject) Level() alarm.ThreatLevel {
	if o.AlarmLevel == nil {
		return ""
	}
	return *o.AlarmLevel
}

// WriteFile stores the artifact at path. The data is written to a temporary
// file in the same directory and renamed into place, so readers never see a
// partial file. The temporary file is removed on failure.
func WriteFile(path string, a *Artifact) (err error) {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// ReadFile loads an artifact written by WriteFile.
func ReadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", path, err)
	}
	return &a, nil
}
