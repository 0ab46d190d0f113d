package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/echemsim/internal/echem"
)

// Mode picks the abscissa and ordinate of a plot.
type Mode int

const (
	CurrentVsPotential Mode = iota
	CurrentVsTime
	PotentialVsTime
	PotentialVsCurrent
)

var modeNames = []string{"i-E", "i-t", "E-t", "E-i"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles through the modes.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown plot mode %q (want one of %s)", s, strings.Join(modeNames, ", "))
}

// DefaultMode is i-E for sweeps and i-t for steps.
func DefaultMode(t echem.Technique) Mode {
	if t == echem.Step {
		return CurrentVsTime
	}
	return CurrentVsPotential
}

// MicroAmps converts A to µA for display.
const MicroAmps = 1e6

// Series returns the plotted x and y data and their axis labels. Currents
// are in µA.
func Series(res *echem.Result, mode Mode) (x, y []float64, xLabel, yLabel string) {
	current := make([]float64, len(res.Current))
	for i, v := range res.Current {
		current[i] = v * MicroAmps
	}
	switch mode {
	case CurrentVsTime:
		return res.Time, current, "t / s", "i / µA"
	case PotentialVsTime:
		return res.Time, res.Potential, "t / s", "E / V"
	case PotentialVsCurrent:
		return current, res.Potential, "i / µA", "E / V"
	default:
		return res.Potential, current, "E / V", "i / µA"
	}
}

// Overlay is an extra trace drawn as dots, e.g. a measured curve.
type Overlay struct {
	X, Y []float64
}

// RenderXY draws y against x on a braille canvas of w x h characters, with
// the data range printed around it.
func RenderXY(x, y []float64, xLabel, yLabel string, w, h int, overlay *Overlay) string {
	series := [][2][]float64{{x, y}}
	if overlay != nil {
		series = append(series, [2][]float64{overlay.X, overlay.Y})
	}
	b := BoundsOf(series...)

	c := NewCanvas(w, h)
	c.Polyline(x, y, b)
	if overlay != nil {
		c.Scatter(overlay.X, overlay.Y, b)
	}

	var s strings.Builder
	fmt.Fprintf(&s, "%s  [%.4g, %.4g]\n", yLabel, b.MinY, b.MaxY)
	s.WriteString(c.String())
	fmt.Fprintf(&s, "%s  [%.4g, %.4g]\n", xLabel, b.MinX, b.MaxX)
	return s.String()
}

// RenderResult is RenderXY for one plot mode of a result.
func RenderResult(res *echem.Result, mode Mode, w, h int, overlay *Overlay) string {
	x, y, xl, yl := Series(res, mode)
	return RenderXY(x, y, xl, yl, w, h, overlay)
}

// RenderTrace plots one series against its sample index.
func RenderTrace(data []float64, caption string, w, h int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.Caption(caption),
	)
}

// RenderProfile plots the oxidized, reduced and chemical concentrations
// (µM) against distance at time sample i.
func RenderProfile(res *echem.Result, i, w, h int) (string, error) {
	_, rows, err := res.Profile(i)
	if err != nil {
		return "", err
	}

	const microMolar = 1e9 // mol/cm3 -> µmol/L
	data := make([][]float64, 0, 3)
	for s, row := range rows {
		if echem.Species(s) == echem.Chemical && allZero(row) {
			continue
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = v * microMolar
		}
		data = append(data, scaled)
	}

	caption := fmt.Sprintf("c / µM vs x (0 to %.3g cm) at t = %.3g s", res.Grid.Length, res.Time[i])
	return asciigraph.PlotMany(data,
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.Caption(caption),
	), nil
}

func allZero(xs []float64) bool {
	for _, v := range xs {
		if v != 0 {
			return false
		}
	}
	return true
}
