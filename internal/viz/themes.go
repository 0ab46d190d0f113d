package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors of the playback view
type Theme struct {
	Name      string
	Trace     lipgloss.Color
	Reference lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Running   lipgloss.Color
	Paused    lipgloss.Color
}

var (
	ThemeLab = Theme{
		Name:      "lab",
		Trace:     lipgloss.Color("#00ccff"),
		Reference: lipgloss.Color("#ff8800"),
		Accent:    lipgloss.Color("#00ffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Running:   lipgloss.Color("#00ff88"),
		Paused:    lipgloss.Color("#ffaa00"),
	}

	ThemePhosphor = Theme{
		Name:      "phosphor",
		Trace:     lipgloss.Color("#00ff00"),
		Reference: lipgloss.Color("#88ff88"),
		Accent:    lipgloss.Color("#00cc00"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Running:   lipgloss.Color("#88ff88"),
		Paused:    lipgloss.Color("#ffff00"),
	}

	ThemePaper = Theme{
		Name:      "paper",
		Trace:     lipgloss.Color("#0044aa"),
		Reference: lipgloss.Color("#aa2200"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#222222"),
		Muted:     lipgloss.Color("#888888"),
		Running:   lipgloss.Color("#007700"),
		Paused:    lipgloss.Color("#aa6600"),
	}

	Themes = []Theme{ThemeLab, ThemePhosphor, ThemePaper}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
