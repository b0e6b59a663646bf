package alarm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]ThreatLevel{"critical": Critical, " WARNING ": Warning, "Critical": Critical}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseLevel("info"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}

func TestEventJSONNullSnapshot(t *testing.T) {
	b, err := json.Marshal(Event{EventID: "e", ThreatLevel: Critical})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"snapshot_path":null`) {
		t.Fatalf("expected null snapshot_path, got %s", b)
	}
}
