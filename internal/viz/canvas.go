package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a character grid addressed in braille sub-pixels, so a w x h
// canvas has (2w) x (4h) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at sub-pixel (x, y); y grows downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return
	}
	c.Grid[y/4][x/2] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at sub-pixel (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Bounds is the data window mapped onto the canvas.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// BoundsOf covers every finite point of the given series. Degenerate
// ranges are widened so that a flat trace still lands mid-canvas.
func BoundsOf(series ...[2][]float64) Bounds {
	b := Bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, s := range series {
		for i := range s[0] {
			x, y := s[0][i], s[1][i]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			b.MinX, b.MaxX = math.Min(b.MinX, x), math.Max(b.MaxX, x)
			b.MinY, b.MaxY = math.Min(b.MinY, y), math.Max(b.MaxY, y)
		}
	}
	if math.IsInf(b.MinX, 1) {
		return Bounds{0, 1, 0, 1}
	}
	if b.MaxX == b.MinX {
		b.MinX, b.MaxX = b.MinX-0.5, b.MaxX+0.5
	}
	if b.MaxY == b.MinY {
		b.MinY, b.MaxY = b.MinY-0.5, b.MaxY+0.5
	}
	return b
}

func (c *Canvas) project(b Bounds, x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x - b.MinX) / (b.MaxX - b.MinX) * w
	py := h - (y-b.MinY)/(b.MaxY-b.MinY)*h
	return int(math.Round(px)), int(math.Round(py))
}

// Polyline joins consecutive points of (xs, ys) within b.
func (c *Canvas) Polyline(xs, ys []float64, b Bounds) {
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		x1, y1 := c.project(b, xs[i], ys[i])
		if i == 0 {
			c.Set(x1, y1)
			continue
		}
		x0, y0 := c.project(b, xs[i-1], ys[i-1])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Scatter marks each point without joining them.
func (c *Canvas) Scatter(xs, ys []float64, b Bounds) {
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		c.Set(c.project(b, xs[i], ys[i]))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
