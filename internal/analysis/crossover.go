package analysis

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
)

const (
	defaultTol   = 1e-9
	bisectionCap = 64
)

// Crossover locates where source a stops dominating along the segment p0
// to p1, by bisection on the dominance predicate. It requires a dominant
// at p0 and b dominant at p1; the returned t is the handover position with
// the bracketing interval narrowed to tol (a fraction of the segment).
// A tol of 0 or less uses a tight default. ok is false when the endpoints
// do not bracket a handover.
//
// When a third source rules part of the segment, the result is the far
// edge of a's reign rather than the start of b's.
func Crossover(s Sampler, a, b field.SourceID, p0, p1 mgl64.Vec3, tol float64) (float64, bool) {
	if a == b {
		return 0, false
	}
	if tol <= 0 {
		tol = defaultTol
	}
	if s.Sample(p0).Dominant != a || s.Sample(p1).Dominant != b {
		return 0, false
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < bisectionCap && hi-lo > tol; i++ {
		mid := (lo + hi) / 2
		if s.Sample(Lerp(p0, p1, mid)).Dominant == a {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
