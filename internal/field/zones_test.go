package field

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestZoneHardZero(t *testing.T) {
	zones := []Zone{{Name: "dock", Center: mgl64.Vec3{}, Radius: 100, ForcedZero: true}}
	net := mgl64.Vec3{0, -9.8, 0}

	inside := ApplyZones(net, mgl64.Vec3{50, 0, 0}, zones)
	if inside.Len() != 0 {
		t.Errorf("inside a hard zone the field must vanish, got %v", inside)
	}

	outside := ApplyZones(net, mgl64.Vec3{150, 0, 0}, zones)
	if !vecClose(outside, net, 0) {
		t.Errorf("outside the zone the field must pass through, got %v", outside)
	}

	boundary := ApplyZones(net, mgl64.Vec3{100, 0, 0}, zones)
	if !vecClose(boundary, net, 0) {
		t.Errorf("the boundary itself is outside, got %v", boundary)
	}
}

func TestZoneSmoothBlend(t *testing.T) {
	zones := []Zone{{Center: mgl64.Vec3{}, Radius: 100, ForcedZero: true, SmoothBlend: true}}
	net := mgl64.Vec3{0, -9.8, 0}

	tests := []struct {
		dist  float64
		scale float64
	}{
		{0, 0},
		{25, 0.25},
		{50, 0.5},
		{99, 0.99},
	}
	for _, tt := range tests {
		got := ApplyZones(net, mgl64.Vec3{tt.dist, 0, 0}, zones)
		want := net.Mul(tt.scale)
		if !vecClose(got, want, 1e-12) {
			t.Errorf("distance %.0f: got %v, expected scale %.2f", tt.dist, got, tt.scale)
		}
	}
}

func TestZoneOverlapLowestWins(t *testing.T) {
	zones := []Zone{
		{Center: mgl64.Vec3{}, Radius: 100, ForcedZero: true, SmoothBlend: true},
		{Center: mgl64.Vec3{40, 0, 0}, Radius: 100, ForcedZero: true},
	}
	p := mgl64.Vec3{80, 0, 0}

	// Smooth zone alone would scale by 0.8; the hard zone forces 0.
	if s := ZoneScale(p, zones); s != 0 {
		t.Errorf("overlap should take the lowest scale, got %.3f", s)
	}
}

func TestZoneMarkerInert(t *testing.T) {
	zones := []Zone{{Name: "waypoint", Center: mgl64.Vec3{}, Radius: 100}}
	net := mgl64.Vec3{3, 2, 1}
	if got := ApplyZones(net, mgl64.Vec3{10, 0, 0}, zones); !vecClose(got, net, 0) {
		t.Errorf("marker zones must not damp the field, got %v", got)
	}
}

func TestZoneValidate(t *testing.T) {
	bad := Zone{Name: "z", Radius: 0}
	if err := bad.Validate(); !errors.Is(err, ErrZoneRadius) {
		t.Errorf("expected ErrZoneRadius, got %v", err)
	}
	worse := Zone{Name: "z", Radius: 5, Center: mgl64.Vec3{0, math.Inf(1), 0}}
	if err := worse.Validate(); !errors.Is(err, ErrNotFinite) {
		t.Errorf("expected ErrNotFinite, got %v", err)
	}
	good := Zone{Name: "z", Radius: 5}
	if err := good.Validate(); err != nil {
		t.Errorf("valid zone rejected: %v", err)
	}
}
