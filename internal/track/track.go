// Package track holds the raw per-frame tracking artifact produced by the
// extraction stage.
package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"perimeterwatch/internal/geometry"
)

// Object class labels.
const (
	ClassPerson  = "Person"
	ClassVehicle = "Vehicle"
)

// ErrNotFound is returned by Load when the artifact does not exist.
var ErrNotFound = errors.New("track artifact not found")

// Object is one tracked detection within a frame.
type Object struct {
	ID      string           `json:"id"`
	Class   string           `json:"class"`
	BoxNorm geometry.BoxNorm `json:"box_norm"`
}

// Frame is the set of objects observed at one timestamp.
type Frame struct {
	FrameID   int      `json:"frame_id"`
	Timestamp float64  `json:"timestamp"`
	Objects   []Object `json:"objects"`
}

// Artifact is the raw track file for one video.
type Artifact struct {
	VideoID     string  `json:"video_id"`
	VideoPath   string  `json:"video_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
	Tracks      []Frame `json:"tracks"`
}

// Load reads a raw track artifact. Missing numeric fields decode as zero.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("read tracks: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode tracks %s: %w", path, err)
	}
	return &a, nil
}

// WriteFile stores the artifact as indented JSON.
func WriteFile(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tracks: %w", err)
	}
	return nil
}

// SortByTimestamp orders frames by timestamp, keeping input order for equal
// timestamps. It reports whether the input was out of order.
func SortByTimestamp(frames []Frame) bool {
	less := func(i, j int) bool { return frames[i].Timestamp < frames[j].Timestamp }
	if sort.SliceIsSorted(frames, less) {
		return false
	}
	sort.SliceStable(frames, less)
	return true
}
