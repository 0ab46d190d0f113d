package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/echemsim/internal/echem"
)

func simulate(t *testing.T, tech echem.Technique) *echem.Result {
	t.Helper()
	p := echem.DefaultParams()
	p.Technique = tech
	res, err := echem.Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return res
}

func TestCanvasSetIsSet(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("expected dot to be set")
	}
	if c.IsSet(2, 5) {
		t.Error("neighbouring dot should be clear")
	}
	c.Set(-1, 100)
	c.Clear()
	if c.IsSet(3, 5) {
		t.Error("clear should reset dots")
	}
}

func TestCanvasPolylineCorners(t *testing.T) {
	c := NewCanvas(10, 5)
	b := Bounds{0, 1, 0, 1}
	c.Polyline([]float64{0, 1}, []float64{0, 1}, b)
	if !c.IsSet(0, 19) {
		t.Error("origin should map to bottom-left")
	}
	if !c.IsSet(19, 0) {
		t.Error("(1, 1) should map to top-right")
	}
}

func TestBoundsOfFlatSeries(t *testing.T) {
	b := BoundsOf([2][]float64{{1, 2, 3}, {4, 4, 4}})
	if b.MinY >= 4 || b.MaxY <= 4 {
		t.Errorf("flat series should be widened, got %+v", b)
	}
	if b.MinX != 1 || b.MaxX != 3 {
		t.Errorf("unexpected x range %+v", b)
	}
	if empty := BoundsOf(); empty != (Bounds{0, 1, 0, 1}) {
		t.Errorf("expected unit bounds for no data, got %+v", empty)
	}
}

func TestParseMode(t *testing.T) {
	for m := CurrentVsPotential; m <= PotentialVsCurrent; m++ {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("round trip %s: got %v, %v", m, got, err)
		}
	}
	if _, err := ParseMode("x-y"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if PotentialVsCurrent.Next() != CurrentVsPotential {
		t.Error("mode cycle should wrap")
	}
}

func TestDefaultMode(t *testing.T) {
	if DefaultMode(echem.Sweep) != CurrentVsPotential {
		t.Error("sweeps should plot i-E")
	}
	if DefaultMode(echem.Step) != CurrentVsTime {
		t.Error("steps should plot i-t")
	}
}

func TestSeriesUnits(t *testing.T) {
	res := simulate(t, echem.Sweep)
	x, y, xl, yl := Series(res, CurrentVsPotential)
	if xl != "E / V" || yl != "i / µA" {
		t.Errorf("unexpected labels %q %q", xl, yl)
	}
	if x[10] != res.Potential[10] || y[10] != res.Current[10]*MicroAmps {
		t.Error("series should be potential against current in µA")
	}
}

func TestRenderResult(t *testing.T) {
	res := simulate(t, echem.Sweep)
	out := RenderResult(res, CurrentVsPotential, 40, 10, &Overlay{X: []float64{0}, Y: []float64{0}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "i / µA") || !strings.HasPrefix(lines[11], "E / V") {
		t.Errorf("axis labels missing:\n%s", out)
	}
}

func TestRenderProfile(t *testing.T) {
	res := simulate(t, echem.Sweep)
	out, err := RenderProfile(res, 500, 60, 10)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !strings.Contains(out, "c / µM") {
		t.Error("expected caption")
	}
	if _, err := RenderProfile(res, res.Len(), 60, 10); err == nil {
		t.Error("expected error for out of range sample")
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 10); got != "█████░░░░░" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := ProgressBar(2, 4); got != "████" {
		t.Errorf("overfull bar should clamp, got %q", got)
	}
}

func TestMetricTable(t *testing.T) {
	out := MetricTable(map[string]float64{"b": 2, "a": 1})
	if out != "a  1\nb  2\n" {
		t.Errorf("unexpected table %q", out)
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("paper").Name != "paper" {
		t.Error("expected paper theme")
	}
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	if nextTheme(Themes[len(Themes)-1]).Name != Themes[0].Name {
		t.Error("theme cycle should wrap")
	}
}

func TestPlayerPlayback(t *testing.T) {
	res := simulate(t, echem.Step)
	p := NewPlayer(res, "ca")

	m, cmd := p.Update(TickMsg{})
	p = m.(Player)
	if p.Head() != SamplesPerTick {
		t.Errorf("expected head %d, got %d", SamplesPerTick, p.Head())
	}
	if cmd == nil {
		t.Error("running player should schedule another tick")
	}

	m, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	p = m.(Player)
	if p.Running() {
		t.Error("space should pause")
	}
	m, cmd = p.Update(TickMsg{})
	p = m.(Player)
	if p.Head() != SamplesPerTick || cmd != nil {
		t.Error("paused player should not advance")
	}

	m, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	p = m.(Player)
	if p.Mode() != PotentialVsTime {
		t.Errorf("expected E-t after cycling from i-t, got %s", p.Mode())
	}

	m, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	p = m.(Player)
	if !p.Done() || p.Head() != res.Len() {
		t.Error("e should jump to the end")
	}
	if !strings.Contains(p.View(), "DONE") {
		t.Error("finished view should say so")
	}

	m, cmd = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	p = m.(Player)
	if p.Head() != 0 || p.Done() || !p.Running() || cmd == nil {
		t.Error("r should restart playback")
	}
}

func TestPlayerFinishes(t *testing.T) {
	p := echem.DefaultParams()
	p.TimeSteps = 2000
	res, err := echem.Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	player := NewPlayer(res, "cv")
	var cmd tea.Cmd
	for i := 0; i < res.Len(); i++ {
		var m tea.Model
		m, cmd = player.Update(TickMsg{})
		player = m.(Player)
		if player.Done() {
			break
		}
	}
	if !player.Done() || cmd != nil {
		t.Error("player should stop ticking once the trace is shown")
	}
}
