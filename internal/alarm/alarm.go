// Alarm event records with greptime tags
package alarm

import (
	"os"
	"strings"
)

// ThreatLevel is the severity of an alarm.
type ThreatLevel string

// Threat levels.
const (
	Critical ThreatLevel = "CRITICAL"
	Warning  ThreatLevel = "WARNING"
)

// ParseLevel accepts any casing of a threat level. ok is false for unknown values.
func ParseLevel(s string) (ThreatLevel, bool) {
	switch ThreatLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case Critical:
		return Critical, true
	case Warning:
		return Warning, true
	}
	return "", false
}

// Event is one discrete alarm raised by a classification run.
type Event struct {
	EventID        string      `json:"event_id"`        // TAG
	VideoID        string      `json:"video_id"`        // TAG
	VideoTimestamp float64     `json:"video_timestamp"` // FIELD, seconds into the video
	ObjectType     string      `json:"object_type"`     // FIELD
	ThreatLevel    ThreatLevel `json:"threat_level"`    // TAG
	SnapshotPath   *string     `json:"snapshot_path"`   // FIELD, never set at generation
}

// TableName holds the table name used when writing alarms to GreptimeDB.
// It defaults to "perimeter_alarms" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "perimeter_alarms"
}()
