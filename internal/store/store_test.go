package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"perimeterwatch/internal/alarm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "alarms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func events(videoID string, n int, lvl alarm.ThreatLevel) []alarm.Event {
	out := make([]alarm.Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, alarm.Event{
			EventID:        fmt.Sprintf("%s-%s-%02d", videoID, lvl, i),
			VideoID:        videoID,
			VideoTimestamp: float64(i),
			ObjectType:     "Person",
			ThreatLevel:    lvl,
		})
	}
	return out
}

func TestMigrateVersion(t *testing.T) {
	s := openTestStore(t)
	v, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), v)

	// Re-running is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestReplaceForVideo(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.ReplaceForVideo(ctx, "v1", events("v1", 3, alarm.Critical)))
	require.NoError(t, s.ReplaceForVideo(ctx, "v2", events("v2", 2, alarm.Warning)))

	// Re-classifying v1 replaces only its rows.
	require.NoError(t, s.ReplaceForVideo(ctx, "v1", events("v1", 1, alarm.Warning)))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	items, total, err := s.List(ctx, Filter{VideoID: "v1"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, alarm.Warning, items[0].ThreatLevel)
	require.Nil(t, items[0].SnapshotPath)
}

func TestReplaceForVideoRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.ReplaceForVideo(ctx, "v1", events("v1", 2, alarm.Critical)))

	// Duplicate event ids violate the unique constraint mid-transaction.
	dup := events("v1", 1, alarm.Warning)
	dup = append(dup, dup[0])
	require.Error(t, s.ReplaceForVideo(ctx, "v1", dup))

	_, total, err := s.List(ctx, Filter{VideoID: "v1"})
	require.NoError(t, err)
	require.Equal(t, 2, total, "failed replace must keep the previous rows")
}

func TestListPagingAndLevel(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	all := append(events("v1", 15, alarm.Critical), events("v1", 5, alarm.Warning)...)
	require.NoError(t, s.ReplaceForVideo(ctx, "v1", all))

	items, total, err := s.List(ctx, Filter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 20, total)
	require.Len(t, items, 10)
	require.Equal(t, all[10].EventID, items[0].EventID)

	items, total, err = s.List(ctx, Filter{Level: alarm.Warning})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, items, 5)
	for _, e := range items {
		require.Equal(t, alarm.Warning, e.ThreatLevel)
	}

	items, total, err = s.List(ctx, Filter{Page: 9})
	require.NoError(t, err)
	require.Equal(t, 20, total)
	require.Empty(t, items)

	items, total, err = s.List(ctx, Filter{EventID: "#" + all[3].EventID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, all[3].EventID, items[0].EventID)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := "/snapshots/a.jpg"
	e := alarm.Event{EventID: "abc", VideoID: "v1", VideoTimestamp: 0.36, ObjectType: "Vehicle", ThreatLevel: alarm.Critical, SnapshotPath: &snap}
	require.NoError(t, s.ReplaceForVideo(ctx, "v1", []alarm.Event{e}))

	got, err := s.Get(ctx, "#abc")
	require.NoError(t, err)
	require.Equal(t, e, got)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
