package analysis

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
)

// Sampler is any field that can be probed at a point. Both the live
// registry and a snapshot satisfy it.
type Sampler interface {
	Sample(p mgl64.Vec3) field.Sample
}

// ProfilePoint is one sample of a surveyed segment.
type ProfilePoint struct {
	T        float64 // 0..1 along the segment
	Pos      mgl64.Vec3
	Mag      float64
	Dominant field.SourceID
}

// Lerp interpolates between two points, t=0 at p0 and t=1 at p1.
func Lerp(p0, p1 mgl64.Vec3, t float64) mgl64.Vec3 {
	return p0.Add(p1.Sub(p0).Mul(t))
}

// Profile samples the raw net field at count evenly spaced points from p0
// to p1 inclusive. Stable zones are a per-entity concern and are not
// applied here. Returns nil when count < 2.
func Profile(s Sampler, p0, p1 mgl64.Vec3, count int) []ProfilePoint {
	if count < 2 {
		return nil
	}

	points := make([]ProfilePoint, count)
	for i := 0; i < count; i++ {
		t := float64(i) / float64(count-1)
		pos := Lerp(p0, p1, t)
		smp := s.Sample(pos)
		points[i] = ProfilePoint{
			T:        t,
			Pos:      pos,
			Mag:      smp.Net.Len(),
			Dominant: smp.Dominant,
		}
	}
	return points
}

// Magnitudes extracts the magnitude column of a profile, ready for
// plotting.
func Magnitudes(points []ProfilePoint) []float64 {
	mags := make([]float64, len(points))
	for i, p := range points {
		mags[i] = p.Mag
	}
	return mags
}
