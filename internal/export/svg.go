package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/echemsim/internal/viz"
)

// CanvasToSVG draws every lit braille dot of a canvas as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, color)

	r := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceToSVG draws y against x as a single path, padded by a tenth of the
// data range on each side.
func TraceToSVG(x, y []float64, width, height int, stroke string) string {
	n := min(len(x), len(y))
	if n < 2 {
		return ""
	}

	b := viz.BoundsOf([2][]float64{x[:n], y[:n]})
	padX, padY := (b.MaxX-b.MinX)*0.1, (b.MaxY-b.MinY)*0.1
	b.MinX, b.MaxX = b.MinX-padX, b.MaxX+padX
	b.MinY, b.MaxY = b.MinY-padY, b.MaxY+padY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke)

	for i := 0; i < n; i++ {
		px := (x[i] - b.MinX) / (b.MaxX - b.MinX) * float64(width)
		py := float64(height) - (y[i]-b.MinY)/(b.MaxY-b.MinY)*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
