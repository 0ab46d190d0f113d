package export

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/viz"
)

var (
	simulatedColor = color.RGBA{R: 0x00, G: 0x44, B: 0xaa, A: 0xff}
	measuredColor  = color.RGBA{R: 0xaa, G: 0x22, B: 0x00, A: 0xff}
)

// PlotSize is the default figure size for SavePlot.
const PlotSize = 5 * vg.Inch

func xys(x, y []float64) plotter.XYs {
	n := min(len(x), len(y))
	out := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		out[i].X = x[i]
		out[i].Y = y[i]
	}
	return out
}

// NewPlot builds a figure of one result in the given mode, with an optional
// measured trace drawn as points on top.
func NewPlot(res *echem.Result, mode viz.Mode, ref *viz.Overlay) (*plot.Plot, error) {
	x, y, xl, yl := viz.Series(res, mode)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s", res.Mechanism, techniqueTitle(res.Technique))
	p.X.Label.Text = xl
	p.Y.Label.Text = yl
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys(x, y))
	if err != nil {
		return nil, fmt.Errorf("simulated trace: %w", err)
	}
	line.Color = simulatedColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("simulated", line)

	if ref != nil {
		s, err := plotter.NewScatter(xys(ref.X, ref.Y))
		if err != nil {
			return nil, fmt.Errorf("measured trace: %w", err)
		}
		s.GlyphStyle.Color = measuredColor
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add("measured", s)
	}
	p.Legend.Top = true
	return p, nil
}

// SavePlot writes a figure to path; the format follows the extension
// (.png, .svg, .pdf, .eps, .jpg, .tif).
func SavePlot(path string, res *echem.Result, mode viz.Mode, ref *viz.Overlay) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff":
	default:
		return fmt.Errorf("unsupported plot format %q", filepath.Ext(path))
	}
	p, err := NewPlot(res, mode, ref)
	if err != nil {
		return err
	}
	return p.Save(PlotSize*1.4, PlotSize, path)
}

func techniqueTitle(t echem.Technique) string {
	if t == echem.Step {
		return "chronoamperogram"
	}
	return "cyclic voltammogram"
}
