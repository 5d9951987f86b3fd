package field

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func benchRegistry(n int) *Registry {
	reg := NewRegistry()
	for i := 0; i < n; i++ {
		a := float64(i) * 2 * math.Pi / float64(n)
		reg.Register(&Source{
			Name:            "src",
			Center:          mgl64.Vec3{800 * math.Cos(a), 800 * math.Sin(a), float64(i * 10)},
			SurfaceStrength: 9.8,
			SurfaceRadius:   50,
			MaxRange:        math.Inf(1),
		})
	}
	return reg
}

func BenchmarkSample2(b *testing.B) {
	reg := benchRegistry(2)
	p := mgl64.Vec3{10, 20, 30}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Sample(p)
	}
}

func BenchmarkSample8(b *testing.B) {
	reg := benchRegistry(8)
	p := mgl64.Vec3{10, 20, 30}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Sample(p)
	}
}

func BenchmarkSample64(b *testing.B) {
	reg := benchRegistry(64)
	p := mgl64.Vec3{10, 20, 30}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Sample(p)
	}
}

func BenchmarkSampleViews8(b *testing.B) {
	views := benchRegistry(8).Snapshot(nil)
	p := mgl64.Vec3{10, 20, 30}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SampleViews(views, p)
	}
}

func BenchmarkContributions8(b *testing.B) {
	reg := benchRegistry(8)
	p := mgl64.Vec3{10, 20, 30}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Contributions(p)
	}
}
