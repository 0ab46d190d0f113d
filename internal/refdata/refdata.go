// Package refdata reads measured traces exported by potentiostat software
// for overlay and comparison with simulations.
//
// Files are ';'-separated with one header row. Column 0 holds the abscissa
// (potential in V or time in s) and column 2 the current in A. Empty cells
// are skipped; currents are returned in µA.
package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	xColumn = 0
	yColumn = 2

	// MicroAmps converts A to µA.
	MicroAmps = 1e6
)

// Trace is a measured curve. Y is in µA.
type Trace struct {
	Name string
	X    []float64
	Y    []float64
}

// Amps returns Y converted back to A.
func (t *Trace) Amps() []float64 {
	out := make([]float64, len(t.Y))
	for i, v := range t.Y {
		out[i] = v / MicroAmps
	}
	return out
}

func (t *Trace) Len() int { return len(t.X) }

func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tr.Name = path
	return tr, nil
}

func Read(r io.Reader) (*Trace, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("no data rows after header")
	}

	tr := &Trace{}
	for i, rec := range records[1:] {
		line := i + 2
		x, okX, err := cell(rec, xColumn, line)
		if err != nil {
			return nil, err
		}
		y, okY, err := cell(rec, yColumn, line)
		if err != nil {
			return nil, err
		}
		if okX {
			tr.X = append(tr.X, x)
		}
		if okY {
			tr.Y = append(tr.Y, y*MicroAmps)
		}
	}

	if len(tr.X) != len(tr.Y) {
		return nil, fmt.Errorf("column lengths differ: %d x values, %d y values", len(tr.X), len(tr.Y))
	}
	if len(tr.X) == 0 {
		return nil, errors.New("no numeric data")
	}
	return tr, nil
}

func cell(rec []string, col, line int) (float64, bool, error) {
	if col >= len(rec) {
		return 0, false, fmt.Errorf("line %d: expected at least %d columns, got %d", line, col+1, len(rec))
	}
	s := strings.TrimSpace(rec[col])
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("line %d column %d: %w", line, col+1, err)
	}
	return v, true, nil
}
