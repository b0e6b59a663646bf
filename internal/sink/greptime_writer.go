package sink

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"perimeterwatch/internal/alarm"
)

const defaultGreptimePort = 4001

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes alarm events to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
	now    func() time.Time
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if database == "" {
		database = "public"
	}
	tableName = alarmTableName(tableName)
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	log.Printf("[GreptimeDBWriter] writing alarms to %s:%d/%s.%s", host, port, database, tableName)
	return &GreptimeDBWriter{client: client, table: tableName, now: time.Now}, nil
}

// alarmTableName falls back to alarm.TableName when name is empty.
func alarmTableName(name string) string {
	if name == "" {
		return alarm.TableName
	}
	return name
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptime endpoint is empty")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// No port given.
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q: %w", portStr, err)
	}
	return host, port, nil
}

// WriteAlarm inserts a single alarm row.
func (w *GreptimeDBWriter) WriteAlarm(e alarm.Event) error {
	return w.WriteAlarms([]alarm.Event{e})
}

// WriteAlarms inserts multiple alarm rows in one request.
func (w *GreptimeDBWriter) WriteAlarms(events []alarm.Event) error {
	if len(events) == 0 {
		return nil
	}
	tbl, err := w.alarmTable(events)
	if err != nil {
		return err
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	log.Printf("[GreptimeDBWriter] wrote %d alarms", len(events))
	return nil
}

func (w *GreptimeDBWriter) alarmTable(events []alarm.Event) (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	columns := []func() error{
		func() error { return tbl.AddTagColumn("video_id", types.STRING) },
		func() error { return tbl.AddTagColumn("threat_level", types.STRING) },
		func() error { return tbl.AddTagColumn("event_id", types.STRING) },
		func() error { return tbl.AddFieldColumn("object_type", types.STRING) },
		func() error { return tbl.AddFieldColumn("video_timestamp", types.FLOAT64) },
		func() error { return tbl.AddFieldColumn("snapshot_path", types.STRING) },
		func() error { return tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND) },
	}
	for _, add := range columns {
		if err := add(); err != nil {
			return nil, err
		}
	}

	// Rows are keyed by (video_id, threat_level, event_id, ts). ts is the
	// ingest time shifted by the alarm's offset into the video.
	ingested := w.now()
	for _, e := range events {
		snapshot := ""
		if e.SnapshotPath != nil {
			snapshot = *e.SnapshotPath
		}
		ts := ingested.Add(time.Duration(e.VideoTimestamp * float64(time.Second)))
		if err := tbl.AddRow(e.VideoID, string(e.ThreatLevel), e.EventID, e.ObjectType, e.VideoTimestamp, snapshot, ts); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
