package field

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SourceID is the registry handle for a source. Zero means none.
type SourceID int64

// NoSource is the absent-source sentinel.
const NoSource SourceID = 0

// Participation controls which queries a source takes part in.
type Participation int

const (
	// Both feeds the net field and competes for dominance.
	Both Participation = iota
	// ContributesOnly feeds the net field but never dominates.
	ContributesOnly
	// DominantOnly competes for dominance without pulling.
	DominantOnly
)

func (p Participation) String() string {
	switch p {
	case ContributesOnly:
		return "contributes_only"
	case DominantOnly:
		return "dominant_only"
	default:
		return "both"
	}
}

// ParseParticipation maps a config string to a Participation mode.
// The empty string means Both.
func ParseParticipation(s string) (Participation, error) {
	switch s {
	case "", "both":
		return Both, nil
	case "contributes", "contributes_only":
		return ContributesOnly, nil
	case "dominant", "dominant_only":
		return DominantOnly, nil
	}
	return Both, fmt.Errorf("field: unknown participation %q", s)
}

// Source is a spherical gravity source. Field magnitude at the surface is
// SurfaceStrength and falls off with the square of distance beyond it.
// Points inside the surface read the surface value (distance clamp).
//
// The registry does not own sources: the external owner may move Center or
// retune SurfaceStrength between ticks. Radius, range and participation are
// validated at registration and should not change afterwards.
type Source struct {
	Name            string
	Center          mgl64.Vec3
	SurfaceStrength float64
	SurfaceRadius   float64
	MaxRange        float64
	Priority        int
	Participation   Participation
}

// Validate reports construction errors. MaxRange of +Inf is allowed and
// means unlimited reach.
func (s *Source) Validate() error {
	if s.SurfaceRadius <= 0 || math.IsNaN(s.SurfaceRadius) {
		return fmt.Errorf("source %q: %w", s.Name, ErrSurfaceRadius)
	}
	if s.SurfaceStrength < 0 || math.IsNaN(s.SurfaceStrength) {
		return fmt.Errorf("source %q: %w", s.Name, ErrSurfaceStrength)
	}
	if s.MaxRange < s.SurfaceRadius || math.IsNaN(s.MaxRange) {
		return fmt.Errorf("source %q: %w", s.Name, ErrMaxRange)
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(s.Center[i]) || math.IsInf(s.Center[i], 0) {
			return fmt.Errorf("source %q center: %w", s.Name, ErrNotFinite)
		}
	}
	return nil
}

// SourceView is a flat per-tick copy of a registered source, safe to sample
// from other goroutines while the owner keeps mutating the original.
type SourceView struct {
	ID              SourceID
	Center          mgl64.Vec3
	SurfaceStrength float64
	SurfaceRadius   float64
	MaxRange        float64
	Priority        int
	Participation   Participation
}

// Eval computes this source's contribution at p: the unit direction from p
// toward the center, the clamped inverse-square magnitude, and the true
// distance. ok is false beyond MaxRange. A point exactly at the center
// reads the surface magnitude with a zero direction, never NaN.
func (v SourceView) Eval(p mgl64.Vec3) (dir mgl64.Vec3, mag, dist float64, ok bool) {
	delta := v.Center.Sub(p)
	dist = delta.Len()
	if dist > v.MaxRange {
		return dir, 0, dist, false
	}
	d := dist
	if d < v.SurfaceRadius {
		d = v.SurfaceRadius
	}
	mag = v.SurfaceStrength * (v.SurfaceRadius * v.SurfaceRadius) / (d * d)
	if dist > 0 {
		dir = delta.Mul(1 / dist)
	}
	return dir, mag, dist, true
}
