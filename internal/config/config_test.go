package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
debounce_frames: 5
cooldown_seconds: 2.5
log_format: json
greptime:
  endpoint: localhost
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.DebounceFrames != 5 || cfg.CooldownSeconds != 2.5 || cfg.LogFormat != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// Fields absent from the file keep their defaults.
	if cfg.WarningLoiterSeconds != 5.0 || cfg.Greptime.Database != "public" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
	p := cfg.Params()
	if p.DebounceFrames != 5 || p.CooldownSeconds != 2.5 || p.WarningLoiterSeconds != 5.0 {
		t.Errorf("unexpected params: %+v", p)
	}
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := Load("../../config/engine.yaml", "")
	if err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
	if cfg.DebounceFrames != 10 {
		t.Errorf("unexpected debounce: %d", cfg.DebounceFrames)
	}
}

func TestLoadConfig_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"bad level":     "log_level: verbose\n",
		"zero debounce": "debounce_frames: 0\n",
		"unknown field": "tick: 1s\n",
		"wrong type":    "cooldown_seconds: soon\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body), ""); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.DebounceFrames != 10 || cfg.ResultsDir != "results" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "greptime:4001")
	t.Setenv("GREPTIMEDB_TABLE", "alarms_test")
	t.Setenv("PERIMETER_RESULTS_DIR", "/tmp/results")
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Greptime.Endpoint != "greptime:4001" || cfg.Greptime.Table != "alarms_test" || cfg.ResultsDir != "/tmp/results" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_CustomSchema(t *testing.T) {
	schema := filepath.Join(t.TempDir(), "strict.cue")
	if err := os.WriteFile(schema, []byte("#Config: {debounce_frames: int & <=3}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(writeConfig(t, "debounce_frames: 5\n"), schema)
	if err == nil || !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("expected custom schema to reject, got %v", err)
	}
	if _, err := Load(writeConfig(t, "debounce_frames: 2\n"), schema); err != nil {
		t.Fatalf("custom schema should accept: %v", err)
	}
}
