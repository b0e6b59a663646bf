package sink

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a line for the event viewport.
type logMsg struct{ line string }

// frameMsg carries the overlay frame currently shown.
type frameMsg struct{ analysis.OverlayFrame }

// doneMsg reports that playback reached the end.
type doneMsg struct{}

// TUIWriter renders a replay using a bubbletea TUI.
type TUIWriter struct {
	program teaProgram
	done    chan struct{}
	levels  map[string]alarm.ThreatLevel
}

// NewTUIWriter starts a bubbletea program for art and returns a TUIWriter.
func NewTUIWriter(art *analysis.Artifact) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{}), levels: make(map[string]alarm.ThreatLevel)}
	p := tea.NewProgram(newTUIModel(art), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
	}()
	return w
}

// WriteOverlay implements OverlayWriter. Zone transitions are logged.
func (w *TUIWriter) WriteOverlay(f analysis.OverlayFrame) error {
	for _, o := range f.Objects {
		if o.ID == "" {
			continue
		}
		lvl := o.Level()
		prev, seen := w.levels[o.ID]
		w.levels[o.ID] = lvl
		if seen && prev == lvl || !seen && lvl == "" {
			continue
		}
		state := "left zones"
		if lvl != "" {
			state = "entered " + zoneLabel(o)
		}
		line := fmt.Sprintf("%s %s %s(%s) %s",
			styleTime.Render(fmt.Sprintf("[t=%8.2fs]", f.Timestamp)),
			levelStyle(lvl).Render(fmt.Sprintf("%-8s", levelText(lvl))),
			o.Class, o.ID, state)
		w.program.Send(logMsg{line: line})
	}
	w.program.Send(frameMsg{f})
	return nil
}

// WriteAlarm implements AlarmWriter.
func (w *TUIWriter) WriteAlarm(e alarm.Event) error {
	line := fmt.Sprintf("%s %s %s event=%s",
		styleTime.Render(fmt.Sprintf("[t=%8.2fs]", e.VideoTimestamp)),
		levelStyle(e.ThreatLevel).Reverse(true).Render(" ALARM "+string(e.ThreatLevel)+" "),
		e.ObjectType, e.EventID)
	w.program.Send(logMsg{line: line})
	return nil
}

// Finish marks playback as complete; the viewer stays open until quit.
func (w *TUIWriter) Finish() {
	w.program.Send(doneMsg{})
}

// Done is closed once the user quits the viewer.
func (w *TUIWriter) Done() <-chan struct{} {
	return w.done
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

func levelText(l alarm.ThreatLevel) string {
	if l == "" {
		return "CLEAR"
	}
	return string(l)
}

func zoneLabel(o analysis.OverlayObject) string {
	switch {
	case o.ZoneName != nil:
		return *o.ZoneName
	case o.ZoneID != nil:
		return *o.ZoneID
	}
	return "zone"
}

type tuiModel struct {
	info       table.Model
	objects    table.Model
	vp         viewport.Model
	logs       []string
	frame      analysis.OverlayFrame
	frames     int
	finished   bool
	wrap       bool
	autoscroll bool
	width      int
	height     int
}

func newTUIModel(art *analysis.Artifact) tuiModel {
	info := table.New(
		table.WithColumns([]table.Column{{Title: "Video", Width: 14}, {Title: "", Width: 22}}),
		table.WithRows([]table.Row{
			{"ID", art.VideoID},
			{"Size", fmt.Sprintf("%dx%d", art.Width, art.Height)},
			{"FPS", fmt.Sprintf("%.2f", art.FPS)},
			{"Frames", fmt.Sprintf("%d", len(art.Overlays))},
			{"Zones", fmt.Sprintf("%d", len(art.Zones))},
		}),
		table.WithHeight(6),
	)
	objects := table.New(
		table.WithColumns([]table.Column{
			{Title: "Object", Width: 12},
			{Title: "Class", Width: 8},
			{Title: "Level", Width: 9},
			{Title: "Zone", Width: 14},
		}),
		table.WithHeight(6),
	)
	return tuiModel{
		info:       info,
		objects:    objects,
		vp:         viewport.New(0, 0),
		frames:     len(art.Overlays),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	case frameMsg:
		m.frame = msg.OverlayFrame
		m.objects.SetRows(objectRows(m.frame))
	case logMsg:
		m.logs = append(m.logs, msg.line)
		m.refreshViewport()
	case doneMsg:
		m.finished = true
	}
	return m, nil
}

func objectRows(f analysis.OverlayFrame) []table.Row {
	objs := append([]analysis.OverlayObject(nil), f.Objects...)
	sort.SliceStable(objs, func(i, j int) bool { return objs[i].ID < objs[j].ID })
	rows := make([]table.Row, 0, len(objs))
	for _, o := range objs {
		zone := "-"
		if o.Level() != "" {
			zone = zoneLabel(o)
		}
		rows = append(rows, table.Row{o.ID, o.Class, levelText(o.Level()), zone})
	}
	return rows
}

func (m *tuiModel) updateViewportHeight() {
	h := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.renderBottom()) - 2
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	return strings.Join([]string{
		m.renderHeader(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, m.info.View(), sep, m.objects.View())
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	status := "playing"
	if m.finished {
		status = "finished"
	}
	return fmt.Sprintf("frame %d/%d t=%.2fs %s | Wrap %s | Scroll %s | q quit",
		m.frame.FrameID, m.frames, m.frame.Timestamp, status, indicator(m.wrap), indicator(m.autoscroll))
}
