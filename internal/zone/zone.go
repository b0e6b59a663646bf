// Package zone parses user-drawn zones and resolves which zone a point falls in.
package zone

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type is the severity class of a zone.
type Type string

// Zone types.
const (
	Core    Type = "core"
	Warning Type = "warning"
)

// Zone is a closed polygon in normalized frame coordinates.
type Zone struct {
	ID     string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string       `json:"name,omitempty" yaml:"name,omitempty"`
	Type   Type         `json:"type" yaml:"type"`
	Points [][2]float64 `json:"points" yaml:"points"`
}

// rawZone accepts the key spellings clients send.
type rawZone struct {
	ID            any         `yaml:"id"`
	ZoneIDSnake   any         `yaml:"zone_id"`
	ZoneIDCamel   any         `yaml:"zoneId"`
	Name          string      `yaml:"name"`
	ZoneNameSnake string      `yaml:"zone_name"`
	ZoneNameCamel string      `yaml:"zoneName"`
	Type          string      `yaml:"type"`
	ZoneType      string      `yaml:"zone_type"`
	Points        [][]float64 `yaml:"points"`
	PolygonPoints [][]float64 `yaml:"polygonPoints"`
}

// ErrInvalid is returned when a zone document cannot be decoded.
var ErrInvalid = errors.New("invalid zone document")

// Parse decodes zones from JSON or YAML. The document is either a list of
// zones or a mapping with a "zones" key.
func Parse(data []byte) ([]Zone, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	var raws []rawZone
	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&raws); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Zones []rawZone `yaml:"zones"`
		}
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		raws = wrapped.Zones
	default:
		return nil, fmt.Errorf("%w: expected a list or a mapping", ErrInvalid)
	}

	zones := make([]Zone, 0, len(raws))
	for _, r := range raws {
		zones = append(zones, r.canonical())
	}
	return zones, nil
}

// Load reads and parses a zone file.
func Load(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones: %w", err)
	}
	return Parse(data)
}

func (r rawZone) canonical() Zone {
	z := Zone{
		ID:   firstID(r.ID, r.ZoneIDSnake, r.ZoneIDCamel),
		Name: firstNonEmpty(r.Name, r.ZoneNameSnake, r.ZoneNameCamel),
		Type: ParseType(firstNonEmpty(r.Type, r.ZoneType)),
	}
	pts := r.Points
	if len(pts) == 0 {
		pts = r.PolygonPoints
	}
	for _, p := range pts {
		if len(p) < 2 {
			continue
		}
		z.Points = append(z.Points, [2]float64{p[0], p[1]})
	}
	return z
}

// ParseType maps the spellings used by clients and the zone table onto a
// Type. Unknown values are returned lower-cased and never match.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "core", "corezone", "core_zone":
		return Core
	case "warning", "warningzone", "warning_zone":
		return Warning
	default:
		return Type(strings.ToLower(strings.TrimSpace(s)))
	}
}

func firstID(vals ...any) string {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
