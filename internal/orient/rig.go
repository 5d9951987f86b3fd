package orient

import "github.com/go-gl/mathgl/mgl64"

// Rig tracks a target up direction with its own rates, the way a chase
// camera follows an entity without inheriting every snap of its
// orientation. The rig keeps a lateral axis orthogonal to its up and uses
// it to break the tie when the target flips to the exact opposite
// direction, so the roll stays continuous.
type Rig struct {
	Up        mgl64.Vec3
	Lateral   mgl64.Vec3
	BlendRate float64
	MaxRate   float64
}

// NewRig starts a rig at up with the given rates (radians per second,
// maxRate 0 means uncapped).
func NewRig(up mgl64.Vec3, blendRate, maxRate float64) *Rig {
	u := up.Normalize()
	return &Rig{
		Up:        u,
		Lateral:   anyOrthogonal(u),
		BlendRate: blendRate,
		MaxRate:   maxRate,
	}
}

// Track advances the rig's up toward target and returns the new up. The
// lateral axis is re-orthogonalized against the result each call.
func (r *Rig) Track(target mgl64.Vec3, dt float64) mgl64.Vec3 {
	r.Up = advance(r.Up, target, r.BlendRate, r.MaxRate, dt, r.Lateral)
	r.Lateral = orthoTo(r.Lateral, r.Up)
	return r.Up
}
