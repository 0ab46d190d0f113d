package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/echemsim/internal/echem"
)

// Entry describes one selectable mechanism or technique.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Implemented bool   `json:"implemented"`
}

type Registry struct {
	mechanisms map[string]Entry
	techniques map[string]Entry
}

func NewRegistry() *Registry {
	r := &Registry{
		mechanisms: make(map[string]Entry),
		techniques: make(map[string]Entry),
	}

	describe := map[echem.Mechanism]string{
		echem.E:    "O + ne- <-> R, no coupled chemistry",
		echem.EC:   "electron transfer followed by R <-> C",
		echem.ECE:  "electron transfer, chemistry, second electron transfer (runs as E)",
		echem.CE:   "C <-> O preceding the electron transfer",
		echem.ECat: "catalytic regeneration of O from R",
	}
	for _, m := range echem.Mechanisms() {
		r.mechanisms[m.String()] = Entry{
			Name:        m.String(),
			Description: describe[m],
			Implemented: m.Implemented(),
		}
	}

	r.techniques[echem.Sweep.String()] = Entry{
		Name:        echem.Sweep.String(),
		Description: "cyclic voltammetry between start and switching potential",
		Implemented: true,
	}
	r.techniques[echem.Step.String()] = Entry{
		Name:        echem.Step.String(),
		Description: "single potential-step chronoamperometry",
		Implemented: true,
	}
	return r
}

func (r *Registry) GetMechanism(name string) (Entry, error) {
	m, err := echem.ParseMechanism(name)
	if err != nil {
		return Entry{}, err
	}
	e, ok := r.mechanisms[m.String()]
	if !ok {
		return Entry{}, fmt.Errorf("unknown mechanism: %s", name)
	}
	return e, nil
}

func (r *Registry) GetTechnique(name string) (Entry, error) {
	t, err := echem.ParseTechnique(name)
	if err != nil {
		return Entry{}, err
	}
	return r.techniques[t.String()], nil
}

func (r *Registry) ListMechanisms() []Entry {
	out := make([]Entry, 0, len(r.mechanisms))
	for _, m := range echem.Mechanisms() {
		out = append(out, r.mechanisms[m.String()])
	}
	return out
}

func (r *Registry) ListTechniques() []Entry {
	out := make([]Entry, 0, len(r.techniques))
	for _, e := range r.techniques {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out
}
