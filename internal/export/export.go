package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/echemsim/internal/echem"
)

// TraceHeader is the column layout written by WriteTraceCSV.
var TraceHeader = []string{"time", "potential", "current"}

// WriteTraceCSV writes time (s), potential (V) and current (A), one row per sample.
func WriteTraceCSV(w io.Writer, res *echem.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TraceHeader); err != nil {
		return err
	}
	row := make([]string, 3)
	for i := 0; i < res.Len(); i++ {
		row[0] = strconv.FormatFloat(res.Time[i], 'g', -1, 64)
		row[1] = strconv.FormatFloat(res.Potential[i], 'g', -1, 64)
		row[2] = strconv.FormatFloat(res.Current[i], 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type Data struct {
	Technique string             `json:"technique"`
	Mechanism string             `json:"mechanism"`
	Params    echem.Params       `json:"params"`
	TimeStep  float64            `json:"time_step"`
	SpaceStep float64            `json:"space_step"`
	Lambda    [3]float64         `json:"lambda"`
	Samples   int                `json:"samples"`
	Time      []float64          `json:"time"`
	Potential []float64          `json:"potential"`
	Current   []float64          `json:"current"`
	Distance  []float64          `json:"distance,omitempty"`
	Oxidized  [][]float64        `json:"oxidized,omitempty"`
	Reduced   [][]float64        `json:"reduced,omitempty"`
	Chemical  [][]float64        `json:"chemical,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// NewData flattens a result for serialization. Concentration grids are
// large and only included when grids is set.
func NewData(res *echem.Result, metrics map[string]float64, grids bool) Data {
	d := Data{
		Technique: res.Technique.String(),
		Mechanism: res.Mechanism.String(),
		Params:    res.Params,
		TimeStep:  res.Grid.TimeStep,
		SpaceStep: res.Grid.SpaceStep,
		Lambda:    res.Grid.Lambda,
		Samples:   res.Len(),
		Time:      res.Time,
		Potential: res.Potential,
		Current:   res.Current,
		Metrics:   Finite(metrics),
		Warnings:  res.Warnings,
	}
	if grids {
		d.Distance = res.Distance
		d.Oxidized = res.Oxidized
		d.Reduced = res.Reduced
		d.Chemical = res.Chemical
	}
	return d
}

// Finite drops NaN and infinite metrics, which JSON cannot carry.
func Finite(metrics map[string]float64) map[string]float64 {
	if metrics == nil {
		return nil
	}
	out := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func WriteJSON(w io.Writer, res *echem.Result, metrics map[string]float64, grids bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewData(res, metrics, grids))
}
