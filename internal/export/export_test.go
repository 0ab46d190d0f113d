package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/echemsim/internal/echem"
	"github.com/san-kum/echemsim/internal/viz"
)

func sweep(t *testing.T) *echem.Result {
	t.Helper()
	res, err := echem.Simulate(echem.DefaultParams())
	require.NoError(t, err)
	return res
}

func TestWriteTraceCSV(t *testing.T) {
	res := sweep(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTraceCSV(&buf, res))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, res.Len()+1)
	assert.Equal(t, TraceHeader, rows[0])
	assert.Equal(t, "0.5", rows[1][1])
	assert.Equal(t, "0", rows[1][2])
}

func TestWriteJSON(t *testing.T) {
	res := sweep(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res, map[string]float64{"peak_separation": 0.06}, false))
	var d Data
	require.NoError(t, json.Unmarshal(buf.Bytes(), &d))
	assert.Equal(t, "E", d.Mechanism)
	assert.Equal(t, "sweep", d.Technique)
	assert.Equal(t, res.Len(), d.Samples)
	assert.Len(t, d.Current, res.Len())
	assert.Nil(t, d.Oxidized)
	assert.InDelta(t, 0.06, d.Metrics["peak_separation"], 1e-12)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, res, nil, true))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &d))
	assert.Len(t, d.Oxidized, res.Len())
	assert.Len(t, d.Distance, len(res.Distance))
}

func TestSavePlot(t *testing.T) {
	res := sweep(t)
	dir := t.TempDir()
	ref := &viz.Overlay{X: []float64{0.5, 0, -0.5}, Y: []float64{0, -0.5, -1}}

	for _, name := range []string{"cv.png", "cv.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SavePlot(path, res, viz.CurrentVsPotential, ref))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	assert.Error(t, SavePlot(filepath.Join(dir, "cv.bmp"), res, viz.CurrentVsPotential, nil))
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 4, "#00ff00")
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `width="16" height="16"`)
	assert.Empty(t, CanvasToSVG(nil, 4, "#fff"))
}

func TestTraceToSVG(t *testing.T) {
	svg := TraceToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 100, 50, "#0af")
	assert.Equal(t, 2, strings.Count(svg, " L"))
	assert.Contains(t, svg, `stroke="#0af"`)
	assert.Empty(t, TraceToSVG([]float64{1}, []float64{1}, 100, 50, "#0af"))
}

func TestFinite(t *testing.T) {
	got := Finite(map[string]float64{"a": 1, "b": math.NaN(), "c": math.Inf(-1)})
	assert.Equal(t, map[string]float64{"a": 1}, got)
	assert.Nil(t, Finite(nil))
}
