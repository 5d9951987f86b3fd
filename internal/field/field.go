package field

import "github.com/go-gl/mathgl/mgl64"

// Sample is the result of one field query: the superposed net field and the
// dominant source, if any. DominantDir points from the query point toward
// the dominant source's center.
type Sample struct {
	Net         mgl64.Vec3
	Dominant    SourceID
	DominantDir mgl64.Vec3
	DominantMag float64
}

// Contribution is one source's share of the field at a point, for
// inspection tools. Influence is this magnitude over the sum of all
// in-range magnitudes.
type Contribution struct {
	ID            SourceID
	Name          string
	Direction     mgl64.Vec3
	Magnitude     float64
	Distance      float64
	Influence     float64
	Participation Participation
}

type accum struct {
	net     mgl64.Vec3
	domID   SourceID
	domDir  mgl64.Vec3
	domMag  float64
	domPrio int
}

// better decides whether a candidate beats the current dominant. Exact
// magnitude ties go to the higher priority, then the lower id, so the
// outcome never depends on iteration order.
func (a *accum) better(mag float64, prio int, id SourceID) bool {
	if a.domID == NoSource {
		return true
	}
	if mag != a.domMag {
		return mag > a.domMag
	}
	if prio != a.domPrio {
		return prio > a.domPrio
	}
	return id < a.domID
}

func (a *accum) add(v SourceView, p mgl64.Vec3) {
	dir, mag, _, ok := v.Eval(p)
	if !ok {
		return
	}
	if v.Participation != DominantOnly {
		a.net = a.net.Add(dir.Mul(mag))
	}
	if v.Participation != ContributesOnly && a.better(mag, v.Priority, v.ID) {
		a.domID, a.domDir, a.domMag, a.domPrio = v.ID, dir, mag, v.Priority
	}
}

func (a *accum) sample() Sample {
	return Sample{Net: a.net, Dominant: a.domID, DominantDir: a.domDir, DominantMag: a.domMag}
}

// Sample superposes every in-range source at p and selects the dominant
// one. An empty registry yields a zero field and no dominant. This is the
// hot path: it allocates nothing.
func (r *Registry) Sample(p mgl64.Vec3) Sample {
	var a accum
	for _, id := range r.order {
		a.add(r.view(id), p)
	}
	return a.sample()
}

// SampleViews runs the same query over a snapshot, for passes that sample
// concurrently while the live registry stays with its owner.
func SampleViews(views []SourceView, p mgl64.Vec3) Sample {
	var a accum
	for _, v := range views {
		a.add(v, p)
	}
	return a.sample()
}

// Views is a snapshot slice satisfying the same sampling contract as the
// live registry.
type Views []SourceView

func (v Views) Sample(p mgl64.Vec3) Sample { return SampleViews(v, p) }

// Contributions lists every in-range source at p with influence fractions,
// in registration order. Unlike [Registry.Sample] it allocates; keep it out
// of tick loops.
func (r *Registry) Contributions(p mgl64.Vec3) []Contribution {
	out := make([]Contribution, 0, len(r.order))
	total := 0.0
	for _, id := range r.order {
		v := r.view(id)
		dir, mag, dist, ok := v.Eval(p)
		if !ok {
			continue
		}
		out = append(out, Contribution{
			ID:            id,
			Name:          r.sources[id].Name,
			Direction:     dir,
			Magnitude:     mag,
			Distance:      dist,
			Participation: v.Participation,
		})
		total += mag
	}
	if total > 0 {
		for i := range out {
			out[i].Influence = out[i].Magnitude / total
		}
	}
	return out
}
