package metrics

import (
	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/sim"
)

// DominantSwitches counts how often the dominant source changed between
// consecutive observations, summed over all entities. The first observation
// of an entity only seeds its baseline.
type DominantSwitches struct {
	name     string
	last     map[string]field.SourceID
	switches int
}

func NewDominantSwitches() *DominantSwitches {
	return &DominantSwitches{
		name: "dominant_switches",
		last: make(map[string]field.SourceID),
	}
}

func (d *DominantSwitches) Name() string { return d.name }

func (d *DominantSwitches) Observe(e *sim.Entity, t float64) {
	cur := e.State.Dominant()
	prev, ok := d.last[e.Name]
	d.last[e.Name] = cur
	if ok && prev != cur {
		d.switches++
	}
}

func (d *DominantSwitches) Value() float64 {
	return float64(d.switches)
}

func (d *DominantSwitches) Reset() {
	d.last = make(map[string]field.SourceID)
	d.switches = 0
}
