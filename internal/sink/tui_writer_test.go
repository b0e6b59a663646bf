package sink

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p, levels: map[string]alarm.ThreatLevel{}}
	lvl := alarm.Warning
	zone := "yard"
	frames := []analysis.OverlayFrame{
		{FrameID: 0, Objects: []analysis.OverlayObject{{ID: "a", Class: "Person"}}},
		{FrameID: 1, Objects: []analysis.OverlayObject{{ID: "a", Class: "Person", AlarmLevel: &lvl, ZoneID: &zone}}},
		{FrameID: 2, Objects: []analysis.OverlayObject{{ID: "a", Class: "Person", AlarmLevel: &lvl, ZoneID: &zone}}},
	}
	for _, f := range frames {
		if err := w.WriteOverlay(f); err != nil {
			t.Fatalf("overlay: %v", err)
		}
	}
	// frame, transition log + frame, frame
	if len(p.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(p.msgs))
	}
	log, ok := p.msgs[1].(logMsg)
	if !ok || !strings.Contains(log.line, "entered yard") {
		t.Fatalf("expected transition log, got %#v", p.msgs[1])
	}
	if err := w.WriteAlarm(alarm.Event{EventID: "e1", ThreatLevel: alarm.Warning}); err != nil {
		t.Fatalf("alarm: %v", err)
	}
	if l, ok := p.msgs[4].(logMsg); !ok || !strings.Contains(l.line, "e1") {
		t.Fatalf("expected alarm logMsg, got %#v", p.msgs[4])
	}
	w.Finish()
	if _, ok := p.msgs[5].(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", p.msgs[5])
	}
}

func TestTUIModelFrame(t *testing.T) {
	m := newTUIModel(&analysis.Artifact{VideoID: "v1", Overlays: make([]analysis.OverlayFrame, 3)})
	lvl := alarm.Critical
	mi, _ := m.Update(frameMsg{analysis.OverlayFrame{FrameID: 2, Objects: []analysis.OverlayObject{
		{ID: "b", Class: "Vehicle"},
		{ID: "a", Class: "Person", AlarmLevel: &lvl},
	}}})
	m = mi.(tuiModel)
	rows := m.objects.Rows()
	if len(rows) != 2 || rows[0][0] != "a" || rows[0][2] != "CRITICAL" || rows[1][2] != "CLEAR" {
		t.Fatalf("unexpected object rows: %v", rows)
	}
	if !strings.Contains(m.renderBottom(), "frame 2/3") {
		t.Fatalf("unexpected status bar: %q", m.renderBottom())
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(&analysis.Artifact{})
	m.vp.Width = 20
	m.vp.Height = 5
	mi, _ := m.Update(logMsg{line: "one two three four five six"})
	m = mi.(tuiModel)
	if n := m.vp.TotalLineCount(); n != 1 {
		t.Fatalf("expected a single line before wrap, got %d", n)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	if n := m.vp.TotalLineCount(); n < 2 {
		t.Fatalf("expected wrapped content, got %d lines", n)
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(&analysis.Artifact{})
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if want := len(m.logs) - m.vp.Height; m.vp.YOffset != want {
		t.Fatalf("expected YOffset %d, got %d", want, m.vp.YOffset)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTUIModel(&analysis.Artifact{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
