package solver

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/orient"
)

// Sampler is the field query the solver runs against. Both the live
// [field.Registry] and a [field.Views] snapshot satisfy it.
type Sampler interface {
	Sample(p mgl64.Vec3) field.Sample
}

// Solver runs entity ticks against one sampler and zone set. It holds no
// per-entity state, so one instance may serve many entities, concurrently
// when the sampler is a read-only snapshot.
type Solver struct {
	sampler Sampler
	zones   []field.Zone
}

func New(sampler Sampler, zones []field.Zone) *Solver {
	return &Solver{sampler: sampler, zones: zones}
}

// Step advances st for an entity at p. It samples the field, applies zone
// overrides, runs the weightlessness edges, refreshes the orientation
// target from the dominant source and blends the smoothed up, then fires
// the subscribed hooks.
func (sv *Solver) Step(st *State, p mgl64.Vec3, dt float64) {
	smp := sv.sampler.Sample(p)
	net := field.ApplyZones(smp.Net, p, sv.zones)
	mag := net.Len()

	wasZero := st.zeroG
	prevDom := st.dominant

	enter := st.cfg.ZeroGThreshold
	if st.zeroG {
		if mag >= enter*st.cfg.ZeroGExitFactor {
			st.zeroG = false
		}
	} else if mag < enter {
		st.zeroG = true
	}

	if st.zeroG {
		st.fieldVec = mgl64.Vec3{}
		st.fieldMag = 0
	} else {
		st.fieldVec = net
		st.fieldMag = mag
	}

	// Dominance tracks the raw accumulation; zones and the weightless
	// clamp never reassign it.
	st.dominant = smp.Dominant
	if !st.zeroG && st.dominant != field.NoSource && smp.DominantDir.Len() > 0 {
		st.targetUp = smp.DominantDir.Mul(-1)
	}
	st.smoothedUp = orient.Advance(st.smoothedUp, st.targetUp, st.cfg.BlendRate, st.cfg.MaxRotationRate, dt)

	if st.dominant != prevDom {
		st.fireDominant(prevDom, st.dominant)
	}
	if st.zeroG != wasZero {
		st.fireZeroG(st.zeroG)
	}
}
