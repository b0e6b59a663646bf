// Package store persists alarm events and per-video zones in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"perimeterwatch/internal/alarm"
)

// ErrNotFound is returned when an alarm does not exist.
var ErrNotFound = errors.New("alarm not found")

// Default paging values.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Store is an alarm table in a SQLite database.
type Store struct {
	db *sql.DB
}

// Filter narrows a List call. Page is 1-based.
type Filter struct {
	Page     int
	PageSize int
	Level    alarm.ThreatLevel
	VideoID  string
	// EventID matches one event; a leading '#' is ignored.
	EventID string
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open alarm store: %w", err)
	}
	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceForVideo deletes the stored alarms of videoID and inserts events in
// one transaction.
func (s *Store) ReplaceForVideo(ctx context.Context, videoID string, events []alarm.Event) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM alarms WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("delete alarms for %s: %w", videoID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alarms (event_id, video_id, video_timestamp, object_type, threat_level, snapshot_path)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err = stmt.ExecContext(ctx, e.EventID, videoID, e.VideoTimestamp, e.ObjectType, string(e.ThreatLevel), e.SnapshotPath); err != nil {
			return fmt.Errorf("insert alarm %s: %w", e.EventID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns one page of alarms in insertion order and the total number
// of alarms matching f.
func (s *Store) List(ctx context.Context, f Filter) ([]alarm.Event, int, error) {
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	var (
		conds []string
		args  []any
	)
	if f.Level != "" {
		conds = append(conds, "threat_level = ?")
		args = append(args, string(f.Level))
	}
	if f.VideoID != "" {
		conds = append(conds, "video_id = ?")
		args = append(args, f.VideoID)
	}
	if id := strings.TrimPrefix(f.EventID, "#"); id != "" {
		conds = append(conds, "event_id = ?")
		args = append(args, id)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alarms"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alarms: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, video_id, video_timestamp, object_type, threat_level, snapshot_path
		FROM alarms`+where+` ORDER BY seq LIMIT ? OFFSET ?`,
		append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list alarms: %w", err)
	}
	defer rows.Close()

	items := []alarm.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list alarms: %w", err)
	}
	return items, total, nil
}

// Get returns one alarm. A leading '#' on id is ignored.
func (s *Store) Get(ctx context.Context, id string) (alarm.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT event_id, video_id, video_timestamp, object_type, threat_level, snapshot_path
		FROM alarms WHERE event_id = ?`, strings.TrimPrefix(id, "#"))
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return alarm.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Count returns the number of stored alarms.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alarms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count alarms: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (alarm.Event, error) {
	var (
		e        alarm.Event
		level    string
		snapshot sql.NullString
	)
	if err := sc.Scan(&e.EventID, &e.VideoID, &e.VideoTimestamp, &e.ObjectType, &level, &snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan alarm: %w", err)
	}
	e.ThreatLevel = alarm.ThreatLevel(level)
	if snapshot.Valid {
		p := snapshot.String
		e.SnapshotPath = &p
	}
	return e, nil
}
