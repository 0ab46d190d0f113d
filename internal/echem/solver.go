package echem

// solver advances the three concentration grids row by row with the
// explicit forward-time centred-space scheme.
type solver struct {
	grid Grid
	term reactionTerm
	bulk Cell
	kf   []float64
	kb   []float64
	dOx  float64
	dRed float64
	conc [3][][]float64
	flux []float64
}

func newSolver(p Params, g Grid, kf, kb []float64) *solver {
	s := &solver{
		grid: g,
		term: p.Mechanism.term(p.ChemForward, p.ChemReverse, g.TimeStep),
		bulk: p.Mechanism.Bulk(p.Concentration, p.ChemForward, p.ChemReverse),
		kf:   kf,
		kb:   kb,
		dOx:  p.DiffusionOf(Oxidized),
		dRed: p.DiffusionOf(Reduced),
		flux: make([]float64, g.TimeSteps+1),
	}
	for sp := range s.conc {
		rows := make([][]float64, g.TimeSteps+1)
		backing := make([]float64, (g.TimeSteps+1)*(g.SpaceSteps+1))
		for i := range rows {
			rows[i] = backing[i*(g.SpaceSteps+1) : (i+1)*(g.SpaceSteps+1)]
		}
		for j := range rows[0] {
			rows[0][j] = s.bulk[sp]
		}
		s.conc[sp] = rows
	}
	return s
}

func (s *solver) run() {
	for i := 1; i <= s.grid.TimeSteps; i++ {
		s.step(i)
	}
}

// step computes row i from row i-1.
func (s *solver) step(i int) {
	x := s.grid.SpaceSteps
	prev := [3][]float64{s.conc[0][i-1], s.conc[1][i-1], s.conc[2][i-1]}
	cur := [3][]float64{s.conc[0][i], s.conc[1][i], s.conc[2][i]}

	for j := 1; j < x; j++ {
		d := s.term.delta(Cell{prev[0][j], prev[1][j], prev[2][j]})
		for sp := range cur {
			l := s.grid.Lambda[sp]
			cur[sp][j] = prev[sp][j] + l*(prev[sp][j-1]-2*prev[sp][j]+prev[sp][j+1]) + d[sp]
		}
	}
	for sp := range cur {
		cur[sp][x] = s.bulk[sp]
	}

	// Surface boundary: flux balance between electron transfer and diffusion.
	dx := s.grid.SpaceStep
	kf, kb := s.kf[i], s.kb[i]
	ox1, red1 := cur[Oxidized][1], cur[Reduced][1]
	j := -(kf*ox1 - kb*red1) / (1 + kf*dx/s.dOx + kb*dx/s.dRed)
	cur[Oxidized][0] = ox1 + j*dx/s.dOx
	cur[Reduced][0] = red1 - j*dx/s.dRed
	cur[Chemical][0] = cur[Chemical][1]
	s.flux[i] = j
}

// current converts the surface flux to amperes. I[0] is zero.
func current(p Params, flux []float64) []float64 {
	scale := p.Electrons * Faraday * p.Area
	out := make([]float64, len(flux))
	for i := 1; i < len(flux); i++ {
		out[i] = scale * flux[i]
	}
	return out
}
