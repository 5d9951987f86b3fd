// Package orient blends up vectors toward a target direction at a bounded
// angular rate. The blend is stateless: callers keep the current vector and
// feed it back each tick. [Advance] serves entity orientation; [Rig] wraps
// the same math for camera-like consumers with their own rates and lateral
// axis.
package orient

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// snapAngle is the residual arc below which the blend locks onto the
	// target instead of chasing it asymptotically.
	snapAngle = 0.01 * math.Pi / 180

	// antipodalAngle is where the slerp arc becomes ill-conditioned and
	// the blend switches to an explicit rotation axis.
	antipodalAngle = 170 * math.Pi / 180
)

// AngleBetween returns the arc between two unit vectors in radians.
func AngleBetween(a, b mgl64.Vec3) float64 {
	return math.Acos(mgl64.Clamp(a.Dot(b), -1, 1))
}

// Advance rotates current toward target by at most blendRate*dt radians,
// additionally capped by maxRate*dt when maxRate is positive. Inputs are
// unit vectors; the result is renormalized and never NaN, including the
// exact opposite-direction case. Arcs below a hundredth of a degree snap
// straight to the target.
func Advance(current, target mgl64.Vec3, blendRate, maxRate, dt float64) mgl64.Vec3 {
	return advance(current, target, blendRate, maxRate, dt, mgl64.Vec3{})
}

func advance(current, target mgl64.Vec3, blendRate, maxRate, dt float64, fallback mgl64.Vec3) mgl64.Vec3 {
	if target.Len() == 0 {
		return current
	}
	if current.Len() == 0 {
		return target
	}

	angle := AngleBetween(current, target)
	if angle < snapAngle {
		return target
	}

	maxStep := blendRate * dt
	if maxRate > 0 && maxRate*dt < maxStep {
		maxStep = maxRate * dt
	}
	if maxStep <= 0 {
		return current
	}
	if maxStep >= angle {
		return target
	}

	if angle > antipodalAngle {
		axis := current.Cross(target)
		if axis.Len() < 1e-9 {
			axis = orthoTo(fallback, current)
		}
		axis = axis.Normalize()
		return mgl64.QuatRotate(maxStep, axis).Rotate(current).Normalize()
	}

	full := mgl64.QuatBetweenVectors(current, target)
	part := mgl64.QuatSlerp(mgl64.QuatIdent(), full, maxStep/angle)
	return part.Rotate(current).Normalize()
}

// orthoTo projects hint onto the plane orthogonal to v, falling back to a
// world axis when the hint is degenerate or parallel to v.
func orthoTo(hint, v mgl64.Vec3) mgl64.Vec3 {
	h := hint.Sub(v.Mul(hint.Dot(v)))
	if h.Len() > 1e-9 {
		return h.Normalize()
	}
	return anyOrthogonal(v)
}

func anyOrthogonal(v mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(v[0]) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	return v.Cross(ref).Normalize()
}
