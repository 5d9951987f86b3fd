package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/orient"
	"github.com/san-kum/gravfield/internal/sim"
)

type upSample struct {
	up mgl64.Vec3
	t  float64
}

// MaxUpRate tracks the fastest angular motion of any entity's smoothed up
// vector, in radians per second. On a healthy run it never exceeds the
// configured blend rate or rotation cap.
type MaxUpRate struct {
	name string
	prev map[string]upSample
	max  float64
}

func NewMaxUpRate() *MaxUpRate {
	return &MaxUpRate{
		name: "max_up_rate",
		prev: make(map[string]upSample),
	}
}

func (m *MaxUpRate) Name() string { return m.name }

func (m *MaxUpRate) Observe(e *sim.Entity, t float64) {
	cur := e.State.SmoothedUp()
	last, ok := m.prev[e.Name]
	m.prev[e.Name] = upSample{up: cur, t: t}
	if !ok || t <= last.t {
		return
	}
	rate := orient.AngleBetween(last.up, cur) / (t - last.t)
	if rate > m.max {
		m.max = rate
	}
}

func (m *MaxUpRate) Value() float64 {
	return m.max
}

func (m *MaxUpRate) Reset() {
	m.prev = make(map[string]upSample)
	m.max = 0
}
