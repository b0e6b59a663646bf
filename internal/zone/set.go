package zone

import (
	"log/slog"

	"perimeterwatch/internal/geometry"
)

type compiled struct {
	zone    Zone
	polygon []geometry.Point
}

// Set is a list of zones scaled to one frame size.
type Set struct {
	core    []compiled
	warning []compiled
}

// Match describes where a point landed. ZoneID and ZoneName are empty when
// no zone matched.
type Match struct {
	InCore    bool
	InWarning bool
	ZoneID    string
	ZoneName  string
}

// Compile scales zones to pixel space. Zones with fewer than three points or
// an unknown type are skipped.
func Compile(zones []Zone, width, height int, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Set{}
	for i, z := range zones {
		if len(z.Points) < 3 {
			logger.Debug("skipping degenerate zone", "index", i, "zone_id", z.ID, "points", len(z.Points))
			continue
		}
		c := compiled{zone: z, polygon: geometry.DenormalizePolygon(z.Points, width, height)}
		switch z.Type {
		case Core:
			s.core = append(s.core, c)
		case Warning:
			s.warning = append(s.warning, c)
		default:
			logger.Debug("skipping zone with unknown type", "index", i, "zone_id", z.ID, "type", z.Type)
		}
	}
	return s
}

// Len returns the number of usable zones.
func (s *Set) Len() int { return len(s.core) + len(s.warning) }

// Match resolves p against core zones first and then warning zones. Within a
// type the first zone in input order wins.
func (s *Set) Match(p geometry.Point) Match {
	for _, c := range s.core {
		if geometry.PointInPolygon(p, c.polygon) {
			return Match{InCore: true, ZoneID: c.zone.ID, ZoneName: c.zone.Name}
		}
	}
	for _, c := range s.warning {
		if geometry.PointInPolygon(p, c.polygon) {
			return Match{InWarning: true, ZoneID: c.zone.ID, ZoneName: c.zone.Name}
		}
	}
	return Match{}
}
