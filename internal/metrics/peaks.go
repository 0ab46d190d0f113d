package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/echemsim/internal/echem"
)

type Direction int

const (
	// Cathodic peaks are current minima (reduction).
	Cathodic Direction = iota
	// Anodic peaks are current maxima (oxidation).
	Anodic
)

type PeakField int

const (
	PeakCurrent PeakField = iota
	PeakPotential
)

// Peak tracks the extreme current in one direction and reports either the
// current or the potential at which it occurred.
type Peak struct {
	name      string
	dir       Direction
	field     PeakField
	current   float64
	potential float64
	seen      bool
}

func NewPeak(dir Direction, field PeakField) *Peak {
	name := "cathodic_peak"
	if dir == Anodic {
		name = "anodic_peak"
	}
	if field == PeakCurrent {
		name += "_current"
	} else {
		name += "_potential"
	}
	return &Peak{name: name, dir: dir, field: field}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(potential, current, t float64) {
	better := current < p.current
	if p.dir == Anodic {
		better = current > p.current
	}
	if !p.seen || better {
		p.current = current
		p.potential = potential
		p.seen = true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return 0
	}
	if p.field == PeakPotential {
		return p.potential
	}
	return p.current
}

func (p *Peak) Reset() {
	p.current, p.potential, p.seen = 0, 0, false
}

// PeakSeparation is Epa - Epc. It is zero until both peaks have been seen
// with the expected sign.
type PeakSeparation struct {
	cathodic *Peak
	anodic   *Peak
}

func NewPeakSeparation() *PeakSeparation {
	return &PeakSeparation{
		cathodic: NewPeak(Cathodic, PeakPotential),
		anodic:   NewPeak(Anodic, PeakPotential),
	}
}

func (s *PeakSeparation) Name() string { return "peak_separation" }

func (s *PeakSeparation) Observe(potential, current, t float64) {
	s.cathodic.Observe(potential, current, t)
	s.anodic.Observe(potential, current, t)
}

func (s *PeakSeparation) Value() float64 {
	if s.cathodic.current >= 0 || s.anodic.current <= 0 {
		return 0
	}
	return s.anodic.potential - s.cathodic.potential
}

func (s *PeakSeparation) Reset() {
	s.cathodic.Reset()
	s.anodic.Reset()
}

// Summary locates both peaks of a finished trace.
type Summary struct {
	CathodicIndex     int
	AnodicIndex       int
	CathodicCurrent   float64
	AnodicCurrent     float64
	CathodicPotential float64
	AnodicPotential   float64
	CurrentSpan       float64
}

func Summarize(res *echem.Result) Summary {
	if res.Len() == 0 {
		return Summary{}
	}
	lo := floats.MinIdx(res.Current)
	hi := floats.MaxIdx(res.Current)
	return Summary{
		CathodicIndex:     lo,
		AnodicIndex:       hi,
		CathodicCurrent:   res.Current[lo],
		AnodicCurrent:     res.Current[hi],
		CathodicPotential: res.Potential[lo],
		AnodicPotential:   res.Potential[hi],
		CurrentSpan:       floats.Span(res.Current),
	}
}

// RatioAnodicCathodic is |ipa/ipc|, close to one for a chemically
// reversible couple.
func (s Summary) RatioAnodicCathodic() float64 {
	if s.CathodicCurrent == 0 {
		return 0
	}
	return math.Abs(s.AnodicCurrent / s.CathodicCurrent)
}
