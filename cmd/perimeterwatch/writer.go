package main

import (
	"os"

	"golang.org/x/term"

	"perimeterwatch/internal/config"
	"perimeterwatch/internal/sink"
)

// Output formats for stdout writers.
const (
	formatAuto  = ""
	formatJSON  = "json"
	formatColor = "color"
)

// stdoutWriter is what both stdout renderings implement.
type stdoutWriter interface {
	sink.AlarmWriter
	sink.OverlayWriter
}

// newWriters sets up alarm and overlay writers based on flags and config.
// The overlay writer is nil unless logFile is set. The returned cleanup
// closes any files that were opened.
func newWriters(cfg *config.Config, printOnly bool, format, logFile string) (sink.AlarmWriter, sink.OverlayWriter, func(), error) {
	cleanup := func() {}

	aw, err := baseWriter(cfg, printOnly, format)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return aw, nil, cleanup, nil
	}

	fw, err := sink.NewFileWriter(logFile, logFile+".overlays")
	if err != nil {
		return nil, nil, nil, err
	}
	mw := sink.NewMultiWriter([]sink.AlarmWriter{aw, fw}, []sink.OverlayWriter{fw})
	cleanup = func() { fw.Close() }
	return mw, mw, cleanup, nil
}

// baseWriter chooses GreptimeDB when an endpoint is configured, stdout otherwise.
func baseWriter(cfg *config.Config, printOnly bool, format string) (sink.AlarmWriter, error) {
	if printOnly || cfg.Greptime.Endpoint == "" {
		return newStdoutWriter(cfg, format), nil
	}
	return sink.NewGreptimeDBWriter(cfg.Greptime.Endpoint, cfg.Greptime.Database, cfg.Greptime.Table)
}

// newStdoutWriter renders colour on a terminal and JSON lines otherwise,
// unless format forces one.
func newStdoutWriter(cfg *config.Config, format string) stdoutWriter {
	if format == formatAuto {
		format = formatJSON
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = formatColor
		}
	}
	if format == formatColor {
		return sink.NewColorStdoutWriter(cfg.Params())
	}
	return sink.NewJSONStdoutWriter()
}
