package field

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Zone marks a spherical region that damps the net field. With ForcedZero
// the field inside is zeroed outright, or scaled by distance/radius when
// SmoothBlend is set so the damping eases in toward the center. Zones with
// ForcedZero false are inert markers kept for tooling.
//
// Zones act on the already-accumulated net field; they never affect which
// source is dominant.
type Zone struct {
	Name        string
	Center      mgl64.Vec3
	Radius      float64
	ForcedZero  bool
	SmoothBlend bool
}

func (z *Zone) Validate() error {
	if z.Radius <= 0 || math.IsNaN(z.Radius) {
		return fmt.Errorf("zone %q: %w", z.Name, ErrZoneRadius)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(z.Center[i]) || math.IsInf(z.Center[i], 0) {
			return fmt.Errorf("zone %q center: %w", z.Name, ErrNotFinite)
		}
	}
	return nil
}

// Contains reports whether p is strictly inside the zone.
func (z *Zone) Contains(p mgl64.Vec3) bool {
	return z.Center.Sub(p).LenSqr() < z.Radius*z.Radius
}

func (z *Zone) scale(p mgl64.Vec3) float64 {
	if !z.ForcedZero {
		return 1
	}
	dist := z.Center.Sub(p).Len()
	if dist >= z.Radius {
		return 1
	}
	if z.SmoothBlend {
		return dist / z.Radius
	}
	return 0
}

// ZoneScale returns the strongest damping factor any zone applies at p,
// 1 when no zone covers the point. Overlapping zones take the lowest scale.
func ZoneScale(p mgl64.Vec3, zones []Zone) float64 {
	s := 1.0
	for i := range zones {
		if zs := zones[i].scale(p); zs < s {
			s = zs
		}
	}
	return s
}

// ApplyZones damps the accumulated net field by the zone scale at p.
func ApplyZones(net mgl64.Vec3, p mgl64.Vec3, zones []Zone) mgl64.Vec3 {
	s := ZoneScale(p, zones)
	if s == 1 {
		return net
	}
	return net.Mul(s)
}
