// ColorStdoutWriter prints human-friendly, colorized alarms to STDOUT.
package sink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
	"perimeterwatch/internal/engine"
)

var (
	styleTime     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleCritical = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleWarning  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	styleClear    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleVideo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleHeading  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// levelStyle picks the style for a threat level; empty means no alarm.
func levelStyle(l alarm.ThreatLevel) lipgloss.Style {
	switch l {
	case alarm.Critical:
		return styleCritical
	case alarm.Warning:
		return styleWarning
	}
	return styleClear
}

// colorStyle maps an overlay colour to a style.
func colorStyle(c string) lipgloss.Style {
	switch c {
	case analysis.ColorRed:
		return styleCritical
	case analysis.ColorOrange:
		return styleWarning
	}
	return styleClear
}

// ColorStdoutWriter prints alarms and overlays using terminal colours.
type ColorStdoutWriter struct {
	params engine.Params
	out    io.Writer
	once   sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(p engine.Params) *ColorStdoutWriter {
	return &ColorStdoutWriter{params: p, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	fmt.Fprintln(w.out, styleHeading.Render("Alarm rules"))
	fmt.Fprintf(w.out, "  debounce frames:   %d\n", w.params.DebounceFrames)
	fmt.Fprintf(w.out, "  cooldown (s):      %.1f\n", w.params.CooldownSeconds)
	fmt.Fprintf(w.out, "  warning loiter (s): %.1f\n\n", w.params.WarningLoiterSeconds)
}

// WriteAlarm prints one alarm line.
func (w *ColorStdoutWriter) WriteAlarm(e alarm.Event) error {
	w.once.Do(w.printOverview)
	_, err := fmt.Fprintf(w.out, "%s %s %s object=%s event=%s\n",
		styleTime.Render(fmt.Sprintf("[t=%8.2fs]", e.VideoTimestamp)),
		levelStyle(e.ThreatLevel).Render(fmt.Sprintf("%-8s", e.ThreatLevel)),
		styleVideo.Render("video="+e.VideoID),
		e.ObjectType, e.EventID)
	return err
}

// WriteOverlay prints one frame with each object coloured by its overlay colour.
func (w *ColorStdoutWriter) WriteOverlay(f analysis.OverlayFrame) error {
	parts := make([]string, 0, len(f.Objects))
	for _, o := range f.Objects {
		label := fmt.Sprintf("%s(%s)", o.Class, o.ID)
		if o.ZoneName != nil {
			label += "@" + *o.ZoneName
		} else if o.ZoneID != nil {
			label += "@" + *o.ZoneID
		}
		parts = append(parts, colorStyle(o.Color).Render(label))
	}
	objects := "-"
	if len(parts) > 0 {
		objects = strings.Join(parts, " ")
	}
	_, err := fmt.Fprintf(w.out, "%s frame=%d %s\n",
		styleTime.Render(fmt.Sprintf("[t=%8.2fs]", f.Timestamp)), f.FrameID, objects)
	return err
}
