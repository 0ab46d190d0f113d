package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/echemsim/internal/echem"
)

const (
	// SamplesPerTick is how far playback advances on each frame.
	SamplesPerTick = 5
	frameInterval  = time.Second / 30
)

type TickMsg time.Time

// Player animates a finished result: the trace is revealed a few samples
// per frame, the way a potentiostat would record it.
type Player struct {
	res      *echem.Result
	ref      *Overlay
	mode     Mode
	theme    Theme
	head     int
	running  bool
	finished bool
	width    int
	height   int
	title    string
}

func NewPlayer(res *echem.Result, title string) Player {
	return Player{
		res:     res,
		mode:    DefaultMode(res.Technique),
		theme:   Themes[0],
		running: true,
		width:   60,
		height:  18,
		title:   title,
	}
}

// WithReference overlays a measured trace given in the same units as the
// current plot mode (x, y in plot coordinates).
func (p Player) WithReference(ref *Overlay) Player {
	p.ref = ref
	return p
}

func (p Player) WithMode(m Mode) Player {
	p.mode = m
	return p
}

func (p Player) WithTheme(t Theme) Player {
	p.theme = t
	return p
}

// Head is the number of samples revealed so far.
func (p Player) Head() int { return p.head }

func (p Player) Mode() Mode { return p.mode }

func (p Player) Running() bool { return p.running }

// Done reports whether the whole trace has been shown.
func (p Player) Done() bool { return p.finished }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p Player) Init() tea.Cmd {
	return tick()
}

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case " ", "space":
			p.running = !p.running
			if p.running && !p.finished {
				return p, tick()
			}
		case "r":
			restart := p.finished || !p.running
			p.head, p.finished, p.running = 0, false, true
			if restart {
				return p, tick()
			}
		case "m":
			p.mode = p.mode.Next()
		case "t":
			p.theme = nextTheme(p.theme)
		case "e":
			p.head, p.finished = p.res.Len(), true
		}
		return p, nil

	case tea.WindowSizeMsg:
		p.width = max(20, msg.Width-50)
		p.height = max(6, msg.Height-8)
		return p, nil

	case TickMsg:
		if !p.running || p.finished {
			return p, nil
		}
		p.head = min(p.head+SamplesPerTick, p.res.Len())
		if p.head == p.res.Len() {
			p.finished = true
			return p, nil
		}
		return p, tick()
	}
	return p, nil
}

func (p Player) View() string {
	st := newStyles(p.theme)

	var plot string
	if p.head >= 2 {
		x, y, xl, yl := Series(p.res, p.mode)
		plot = RenderXY(x[:p.head], y[:p.head], xl, yl, p.width, p.height, p.ref)
	} else {
		plot = strings.Repeat("\n", p.height+2)
	}

	var s strings.Builder
	s.WriteString(st.title.Render(strings.ToUpper(p.title)) + "\n")
	switch {
	case p.finished:
		s.WriteString(st.running.Render("DONE") + "\n\n")
	case p.running:
		s.WriteString(st.running.Render("RECORDING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Mechanism", p.res.Mechanism.String())
	row("Technique", p.res.Technique.String())
	row("Plot", p.mode.String())
	if i := p.head - 1; i >= 0 {
		row("t", fmt.Sprintf("%.3f s", p.res.Time[i]))
		row("E", fmt.Sprintf("%.4f V", p.res.Potential[i]))
		row("i", fmt.Sprintf("%.4g µA", p.res.Current[i]*MicroAmps))
	}
	frac := 0.0
	if n := p.res.Len(); n > 0 {
		frac = float64(p.head) / float64(n)
	}
	s.WriteString("\n" + ProgressBar(frac, 24) + fmt.Sprintf(" %3.0f%%", frac*100) + "\n")
	for _, w := range p.res.Warnings {
		s.WriteString(st.paused.Render("! "+w) + "\n")
	}
	s.WriteString(st.hint.Render("SPACE pause  R restart  M mode\nT theme  E end  Q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, st.trace.Render(plot), st.panel.Render(s.String()))
}
