package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"perimeterwatch/internal/zone"
)

// Zone errors.
var (
	ErrZoneNotFound = errors.New("zone not found")
	ErrZoneExists   = errors.New("zone already exists")
)

// Zones returns the stored zones of videoID in creation order.
func (s *Store) Zones(ctx context.Context, videoID string) ([]zone.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT zone_id, name, zone_type, points
		FROM zones WHERE video_id = ? ORDER BY seq`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list zones for %s: %w", videoID, err)
	}
	defer rows.Close()

	zones := []zone.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list zones for %s: %w", videoID, err)
	}
	return zones, nil
}

// GetZone returns one stored zone.
func (s *Store) GetZone(ctx context.Context, videoID, zoneID string) (zone.Zone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT zone_id, name, zone_type, points
		FROM zones WHERE video_id = ? AND zone_id = ?`, videoID, zoneID)
	z, err := scanZone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return zone.Zone{}, fmt.Errorf("%w: %s/%s", ErrZoneNotFound, videoID, zoneID)
	}
	return z, err
}

// CreateZone stores z under videoID. A zone without an id is given one.
func (s *Store) CreateZone(ctx context.Context, videoID string, z zone.Zone) (_ zone.Zone, err error) {
	if z.ID == "" {
		z.ID = "zone-" + uuid.NewString()
	}
	if z.Type == "" {
		z.Type = zone.Core
	}
	if err := z.Validate(); err != nil {
		return zone.Zone{}, err
	}
	points, err := json.Marshal(z.Points)
	if err != nil {
		return zone.Zone{}, fmt.Errorf("encode points: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zone.Zone{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM zones WHERE video_id = ? AND zone_id = ?`, videoID, z.ID).Scan(&n); err != nil {
		return zone.Zone{}, fmt.Errorf("check zone %s: %w", z.ID, err)
	}
	if n > 0 {
		err = fmt.Errorf("%w: %s/%s", ErrZoneExists, videoID, z.ID)
		return zone.Zone{}, err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO zones (video_id, zone_id, name, zone_type, points)
		VALUES (?, ?, ?, ?, ?)`, videoID, z.ID, z.Name, string(z.Type), string(points)); err != nil {
		return zone.Zone{}, fmt.Errorf("insert zone %s: %w", z.ID, err)
	}
	if err = tx.Commit(); err != nil {
		return zone.Zone{}, fmt.Errorf("commit: %w", err)
	}
	return z, nil
}

// UpdateZone overwrites the stored zone with the same id as z.
func (s *Store) UpdateZone(ctx context.Context, videoID string, z zone.Zone) error {
	if err := z.Validate(); err != nil {
		return err
	}
	points, err := json.Marshal(z.Points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE zones SET name = ?, zone_type = ?, points = ?
		WHERE video_id = ? AND zone_id = ?`, z.Name, string(z.Type), string(points), videoID, z.ID)
	if err != nil {
		return fmt.Errorf("update zone %s: %w", z.ID, err)
	}
	return requireAffected(res, videoID, z.ID)
}

// DeleteZone removes one stored zone.
func (s *Store) DeleteZone(ctx context.Context, videoID, zoneID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM zones WHERE video_id = ? AND zone_id = ?`, videoID, zoneID)
	if err != nil {
		return fmt.Errorf("delete zone %s: %w", zoneID, err)
	}
	return requireAffected(res, videoID, zoneID)
}

func requireAffected(res sql.Result, videoID, zoneID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrZoneNotFound, videoID, zoneID)
	}
	return nil
}

func scanZone(sc scanner) (zone.Zone, error) {
	var (
		z      zone.Zone
		typ    string
		points string
	)
	if err := sc.Scan(&z.ID, &z.Name, &typ, &points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return z, err
		}
		return z, fmt.Errorf("scan zone: %w", err)
	}
	z.Type = zone.Type(typ)
	if err := json.Unmarshal([]byte(points), &z.Points); err != nil {
		return z, fmt.Errorf("decode points of zone %s: %w", z.ID, err)
	}
	return z, nil
}
