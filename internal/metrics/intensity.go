package metrics

import (
	"math"

	"github.com/san-kum/gravfield/internal/sim"
)

// FieldStats aggregates the solved field magnitude over a run. Value is the
// mean; Min and Max expose the extremes. Weightless ticks contribute zero,
// matching what the entity actually felt.
type FieldStats struct {
	name    string
	min     float64
	max     float64
	sum     float64
	samples int
}

func NewFieldStats() *FieldStats {
	return &FieldStats{
		name: "field_mean",
		min:  math.Inf(1),
	}
}

func (f *FieldStats) Name() string { return f.name }

func (f *FieldStats) Observe(e *sim.Entity, t float64) {
	mag := e.State.FieldMagnitude()
	f.sum += mag
	f.samples++
	if mag < f.min {
		f.min = mag
	}
	if mag > f.max {
		f.max = mag
	}
}

func (f *FieldStats) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

func (f *FieldStats) Min() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.min
}

func (f *FieldStats) Max() float64 { return f.max }

func (f *FieldStats) Reset() {
	f.min = math.Inf(1)
	f.max = 0
	f.sum = 0
	f.samples = 0
}
