package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/echemsim/internal/echem"
)

func trace(potential, current []float64) *echem.Result {
	times := make([]float64, len(current))
	for i := range times {
		times[i] = float64(i)
	}
	return &echem.Result{Potential: potential, Current: current, Time: times}
}

func TestPeak(t *testing.T) {
	res := trace(
		[]float64{0.2, 0.1, 0.0, 0.1, 0.2},
		[]float64{0, -3, -1, 2, 1},
	)

	tests := []struct {
		dir   Direction
		field PeakField
		name  string
		want  float64
	}{
		{Cathodic, PeakCurrent, "cathodic_peak_current", -3},
		{Cathodic, PeakPotential, "cathodic_peak_potential", 0.1},
		{Anodic, PeakCurrent, "anodic_peak_current", 2},
		{Anodic, PeakPotential, "anodic_peak_potential", 0.1},
	}

	for _, tt := range tests {
		m := NewPeak(tt.dir, tt.field)
		if m.Name() != tt.name {
			t.Errorf("expected name %s, got %s", tt.name, m.Name())
		}
		got := Evaluate(res, []Metric{m})[tt.name]
		if got != tt.want {
			t.Errorf("%s: expected %g, got %g", tt.name, tt.want, got)
		}
	}
}

func TestPeakReset(t *testing.T) {
	m := NewPeak(Cathodic, PeakCurrent)
	m.Observe(0, -1, 0)
	if m.Value() != -1 {
		t.Errorf("expected -1, got %g", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestPeakSeparationNeedsBothPeaks(t *testing.T) {
	m := NewPeakSeparation()
	Evaluate(trace([]float64{0.1, 0.0}, []float64{-1, -2}), []Metric{m})
	if m.Value() != 0 {
		t.Errorf("expected zero without an anodic peak, got %g", m.Value())
	}
}

func TestCharge(t *testing.T) {
	res := trace([]float64{0, 0, 0}, []float64{0, 2, 2})
	got := Evaluate(res, []Metric{NewCharge()})["charge"]
	if math.Abs(got-3) > 1e-12 {
		t.Errorf("expected 3, got %g", got)
	}
}

func TestReversibleSweep(t *testing.T) {
	p := echem.DefaultParams()
	p.RateConstant = 1
	res, err := echem.Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	vals := Evaluate(res, Defaults(p))
	sep := vals["peak_separation"]
	if sep < 0.04 || sep > 0.1 {
		t.Errorf("expected near-Nernstian peak separation, got %.4f V", sep)
	}
	if vals["cathodic_peak_current"] >= 0 {
		t.Error("cathodic peak should be negative")
	}

	s := Summarize(res)
	if s.CathodicCurrent != vals["cathodic_peak_current"] {
		t.Errorf("summary disagrees with metric: %g vs %g", s.CathodicCurrent, vals["cathodic_peak_current"])
	}
	if r := s.RatioAnodicCathodic(); r < 0.5 || r > 1.2 {
		t.Errorf("expected peak ratio near one, got %.3f", r)
	}
}

func TestCottrellProduct(t *testing.T) {
	p := echem.DefaultParams()
	p.Technique = echem.Step
	res, err := echem.Simulate(p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	vals := Evaluate(res, Defaults(p))
	want := -p.Electrons * echem.Faraday * p.Area * p.Concentration * math.Sqrt(p.Diffusion/math.Pi)
	got := vals["cottrell_product"]
	if math.Abs(got-want)/math.Abs(want) > 0.15 {
		t.Errorf("expected cottrell product %g, got %g", want, got)
	}
	if _, ok := vals["peak_separation"]; ok {
		t.Error("step technique should not report peak separation")
	}
}
