// Package scenario generates synthetic raw-track artifacts from YAML
// descriptions of objects moving through a camera frame.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"perimeterwatch/internal/geometry"
	"perimeterwatch/internal/track"
)

// ErrInvalid is returned for scenarios that cannot produce a track artifact.
var ErrInvalid = errors.New("invalid scenario")

// Scenario describes a synthetic video. Coordinates are normalized to the frame.
type Scenario struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description,omitempty"`
	VideoID     string   `yaml:"video_id"`
	VideoPath   string   `yaml:"video_path,omitempty"`
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	FPS         float64  `yaml:"fps"`
	Frames      int      `yaml:"frames,omitempty"`
	Objects     []Object `yaml:"objects"`
}

// Object is one tracked target. It is visible from its first to its last waypoint.
type Object struct {
	ID          string     `yaml:"id"`
	Class       string     `yaml:"class,omitempty"`
	Box         Size       `yaml:"box"`
	Waypoints   []Waypoint `yaml:"waypoints"`
	UnstableIDs bool       `yaml:"unstable_ids,omitempty"`
}

// Size is a normalized box size.
type Size struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Waypoint pins the object's foot point at a frame.
type Waypoint struct {
	Frame int     `yaml:"frame"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks frame geometry and waypoint ordering.
func (s *Scenario) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalid, s.Width, s.Height)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	}
	for i, o := range s.Objects {
		if len(o.Waypoints) == 0 {
			return fmt.Errorf("%w: object %d (%q) has no waypoints", ErrInvalid, i, o.ID)
		}
		for j := 1; j < len(o.Waypoints); j++ {
			if o.Waypoints[j].Frame <= o.Waypoints[j-1].Frame {
				return fmt.Errorf("%w: object %d (%q) waypoints must have increasing frames", ErrInvalid, i, o.ID)
			}
		}
		if o.Waypoints[0].Frame < 0 {
			return fmt.Errorf("%w: object %d (%q) starts before frame 0", ErrInvalid, i, o.ID)
		}
	}
	return nil
}

// FrameCount is Frames, or one past the last waypoint when Frames is unset.
func (s *Scenario) FrameCount() int {
	if s.Frames > 0 {
		return s.Frames
	}
	n := 0
	for _, o := range s.Objects {
		if last := o.Waypoints[len(o.Waypoints)-1].Frame + 1; last > n {
			n = last
		}
	}
	return n
}

// Generate renders the scenario into a raw-track artifact. Objects with
// unstable ids get a fresh UUID in every frame.
func (s *Scenario) Generate() *track.Artifact {
	return s.generate(uuid.NewString)
}

func (s *Scenario) generate(newID func() string) *track.Artifact {
	total := s.FrameCount()
	art := &track.Artifact{
		VideoID:     s.VideoID,
		VideoPath:   s.VideoPath,
		Width:       s.Width,
		Height:      s.Height,
		FPS:         s.FPS,
		TotalFrames: total,
		Tracks:      make([]track.Frame, 0, total),
	}
	for f := 0; f < total; f++ {
		frame := track.Frame{
			FrameID:   f,
			Timestamp: math.Round(float64(f)/s.FPS*1e6) / 1e6,
			Objects:   []track.Object{},
		}
		for _, o := range s.Objects {
			x, y, ok := o.footAt(f)
			if !ok {
				continue
			}
			id := o.ID
			if o.UnstableIDs {
				id = newID()
			}
			frame.Objects = append(frame.Objects, track.Object{
				ID:      id,
				Class:   o.class(),
				BoxNorm: o.boxAt(x, y),
			})
		}
		art.Tracks = append(art.Tracks, frame)
	}
	return art
}

func (o Object) class() string {
	if o.Class == "" {
		return track.ClassPerson
	}
	return o.Class
}

// footAt linearly interpolates the foot point between the waypoints around f.
func (o Object) footAt(f int) (x, y float64, ok bool) {
	wps := o.Waypoints
	if f < wps[0].Frame || f > wps[len(wps)-1].Frame {
		return 0, 0, false
	}
	for i := 1; i < len(wps); i++ {
		a, b := wps[i-1], wps[i]
		if f > b.Frame {
			continue
		}
		t := float64(f-a.Frame) / float64(b.Frame-a.Frame)
		return a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t, true
	}
	return wps[0].X, wps[0].Y, true
}

// boxAt places the box so that its bottom-centre sits on the foot point.
func (o Object) boxAt(x, y float64) geometry.BoxNorm {
	return geometry.BoxNorm{X: x - o.Box.W/2, Y: y - o.Box.H, W: o.Box.W, H: o.Box.H}
}
