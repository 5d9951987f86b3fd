package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Path positions a scripted body or entity at scene time t.
type Path interface {
	Pos(t float64) mgl64.Vec3
}

// StaticPath holds a fixed position.
type StaticPath struct {
	At mgl64.Vec3
}

func (p StaticPath) Pos(float64) mgl64.Vec3 { return p.At }

// LinePath drifts from Origin at a constant velocity.
type LinePath struct {
	Origin   mgl64.Vec3
	Velocity mgl64.Vec3
}

func (p LinePath) Pos(t float64) mgl64.Vec3 { return p.Origin.Add(p.Velocity.Mul(t)) }

// OrbitPath circles Center in the XY plane once per Period, starting at
// Phase radians.
type OrbitPath struct {
	Center mgl64.Vec3
	Radius float64
	Period float64
	Phase  float64
}

func (p OrbitPath) Pos(t float64) mgl64.Vec3 {
	s, c := math.Sincos(2*math.Pi*t/p.Period + p.Phase)
	return p.Center.Add(mgl64.Vec3{p.Radius * c, p.Radius * s, 0})
}
