package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Charge integrates the current over time with the trapezoid rule (C).
type Charge struct {
	total  float64
	lastI  float64
	lastT  float64
	primed bool
}

func NewCharge() *Charge { return &Charge{} }

func (c *Charge) Name() string { return "charge" }

func (c *Charge) Observe(potential, current, t float64) {
	if c.primed {
		c.total += 0.5 * (current + c.lastI) * (t - c.lastT)
	}
	c.lastI, c.lastT, c.primed = current, t, true
}

func (c *Charge) Value() float64 { return c.total }

func (c *Charge) Reset() { *c = Charge{} }

type FinalCurrent struct {
	last float64
}

func NewFinalCurrent() *FinalCurrent { return &FinalCurrent{} }

func (f *FinalCurrent) Name() string { return "final_current" }

func (f *FinalCurrent) Observe(potential, current, t float64) { f.last = current }

func (f *FinalCurrent) Value() float64 { return f.last }

func (f *FinalCurrent) Reset() { f.last = 0 }

// Cottrell reports the mean of I*sqrt(t - t0) over the second half of the
// post-step samples. For diffusion control this equals -nFAC*sqrt(D/pi).
type Cottrell struct {
	stepTime float64
	products []float64
}

func NewCottrell(stepTime float64) *Cottrell {
	return &Cottrell{stepTime: stepTime}
}

func (c *Cottrell) Name() string { return "cottrell_product" }

func (c *Cottrell) Observe(potential, current, t float64) {
	if dt := t - c.stepTime; dt > 0 {
		c.products = append(c.products, current*math.Sqrt(dt))
	}
}

func (c *Cottrell) Value() float64 {
	n := len(c.products)
	if n == 0 {
		return 0
	}
	tail := c.products[n/2:]
	return floats.Sum(tail) / float64(len(tail))
}

func (c *Cottrell) Reset() { c.products = c.products[:0] }
