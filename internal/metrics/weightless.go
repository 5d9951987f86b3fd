package metrics

import (
	"github.com/san-kum/gravfield/internal/sim"
)

// ZeroGFraction is the share of observed ticks an entity spent weightless.
type ZeroGFraction struct {
	name       string
	weightless int
	samples    int
}

func NewZeroGFraction() *ZeroGFraction {
	return &ZeroGFraction{
		name: "zero_g_fraction",
	}
}

func (z *ZeroGFraction) Name() string { return z.name }

func (z *ZeroGFraction) Observe(e *sim.Entity, t float64) {
	z.samples++
	if e.State.IsZeroG() {
		z.weightless++
	}
}

func (z *ZeroGFraction) Value() float64 {
	if z.samples == 0 {
		return 0
	}
	return float64(z.weightless) / float64(z.samples)
}

func (z *ZeroGFraction) Reset() {
	z.weightless = 0
	z.samples = 0
}
