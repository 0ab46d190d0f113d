package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are derived from a theme each time the view renders.
type styles struct {
	title   lipgloss.Style
	trace   lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	hint    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginBottom(1),
		trace: lipgloss.NewStyle().Foreground(t.Trace).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(38),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		value:   lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
	}
}

// ProgressBar renders a fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// MetricTable renders metrics as aligned "name value" lines, sorted by name.
func MetricTable(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	width := 0
	for k := range metrics {
		names = append(names, k)
		width = max(width, len(k))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		fmt.Fprintf(&b, "%-*s  %.4g\n", width, k, metrics[k])
	}
	return b.String()
}
