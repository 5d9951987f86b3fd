package analysis

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Equilibrium locates a zero of the net field's axial component along the
// segment p0 to p1, the spot where opposing pulls cancel. Bisection runs
// on the signed projection onto the segment direction, so the endpoints
// must pull in opposite axial directions. The returned t narrows the
// bracket to tol (a fraction of the segment, 0 or less for a tight
// default). ok is false when the endpoints do not bracket a cancellation.
//
// The point found is where an entity would read a weightless field, not a
// stable resting place.
func Equilibrium(s Sampler, p0, p1 mgl64.Vec3, tol float64) (float64, bool) {
	axis := p1.Sub(p0)
	l := axis.Len()
	if l == 0 {
		return 0, false
	}
	axis = axis.Mul(1 / l)
	if tol <= 0 {
		tol = defaultTol
	}

	f := func(t float64) float64 {
		return s.Sample(Lerp(p0, p1, t)).Net.Dot(axis)
	}

	f0, f1 := f(0), f(1)
	switch {
	case f0 == 0:
		return 0, true
	case f1 == 0:
		return 1, true
	case f0*f1 > 0:
		return 0, false
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < bisectionCap && hi-lo > tol; i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if fm == 0 {
			return mid, true
		}
		if f0*fm < 0 {
			hi = mid
		} else {
			lo = mid
			f0 = fm
		}
	}
	return (lo + hi) / 2, true
}
