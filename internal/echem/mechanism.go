package echem

import (
	"fmt"
	"strings"
)

// Mechanism selects the homogeneous chemistry coupled to the electron
// transfer O + ne- <-> R.
type Mechanism int

const (
	// E is a bare electron transfer.
	E Mechanism = iota
	// EC follows the electron transfer with R <-> C.
	EC
	// ECE is accepted as a label only; its second electron transfer is not
	// defined and it runs with the E coupling.
	ECE
	// CE precedes the electron transfer with C <-> O.
	CE
	// ECat is the catalytic EC variant that regenerates O from R.
	ECat
)

var mechanismNames = map[Mechanism]string{
	E:    "E",
	EC:   "EC",
	ECE:  "ECE",
	CE:   "CE",
	ECat: "ECat",
}

func (m Mechanism) String() string {
	if s, ok := mechanismNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mechanism(%d)", int(m))
}

// Mechanisms lists every accepted mechanism in declaration order.
func Mechanisms() []Mechanism {
	return []Mechanism{E, EC, ECE, CE, ECat}
}

// ParseMechanism is case-insensitive.
func ParseMechanism(s string) (Mechanism, error) {
	for m, name := range mechanismNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mechanism: %s", s)
}

func (m Mechanism) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mechanism) UnmarshalText(b []byte) error {
	v, err := ParseMechanism(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Implemented reports whether the mechanism has a defined coupling.
func (m Mechanism) Implemented() bool {
	return m != ECE
}

// Cell holds the oxidized, reduced and chemical concentrations at one grid point.
type Cell [3]float64

// Bulk returns the initial concentrations far from the electrode. For CE the
// precursor is in equilibrium with the oxidized form; a zero reverse rate
// leaves everything oxidized.
func (m Mechanism) Bulk(conc, kcf, kcr float64) Cell {
	if m != CE {
		return Cell{conc, 0, 0}
	}
	chem := 0.0
	if kcr != 0 {
		chem = conc / (1 + kcf/kcr)
	}
	return Cell{conc - chem, 0, chem}
}

// reactionTerm is the homogeneous source/sink over one time step.
type reactionTerm interface {
	delta(c Cell) Cell
}

// term builds the reaction term with the rate constants already scaled by dt.
func (m Mechanism) term(kcf, kcr, dt float64) reactionTerm {
	f, r := kcf*dt, kcr*dt
	switch m {
	case EC:
		return ecTerm{f, r}
	case ECat:
		return ecatTerm{f, r}
	case CE:
		return ceTerm{f, r}
	}
	return eTerm{}
}

type eTerm struct{}

func (eTerm) delta(Cell) Cell { return Cell{} }

// ecTerm: R <-> C.
type ecTerm struct{ f, r float64 }

func (t ecTerm) delta(c Cell) Cell {
	red := -t.f*c[Reduced] + t.r*c[Chemical]
	return Cell{0, red, -red}
}

// ecatTerm: R <-> C plus R -> O regeneration, with O consumed at the
// reverse rate.
type ecatTerm struct{ f, r float64 }

func (t ecatTerm) delta(c Cell) Cell {
	red := -t.f*c[Reduced] + t.r*c[Chemical]
	ox := t.f*c[Reduced] - t.r*c[Oxidized]
	return Cell{ox, red, -red}
}

// ceTerm: C <-> O ahead of the electron transfer.
type ceTerm struct{ f, r float64 }

func (t ceTerm) delta(c Cell) Cell {
	ox := t.f*c[Chemical] - t.r*c[Oxidized]
	return Cell{ox, 0, -ox}
}
