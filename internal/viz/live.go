package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/orient"
	"github.com/san-kum/gravfield/internal/sim"
)

const (
	canvasW         = 80
	canvasH         = 24
	historyCapacity = 600
	trailCapacity   = 400
	graphWindow     = 120
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// marker carries per-entity draw state. The rig lags the entity's smoothed
// up a little more, which keeps the glyph from jittering at high tick
// rates.
type marker struct {
	rig   *orient.Rig
	trail []struct{ x, y int }
}

// Model runs one scene and renders it as a top-down XY map next to a
// stats panel for the focused entity.
type Model struct {
	build   func() (*sim.Scene, error)
	scene   *sim.Scene
	dt      float64
	canvas  *Canvas
	markers []*marker
	magHist []float64
	focus   int
	running bool
	err     error

	minX, minY float64
	scale      float64
	offX, offY float64
}

// NewModel builds the initial scene and fixes the world window around it.
// The build closure runs again on reset.
func NewModel(build func() (*sim.Scene, error), dt float64) (Model, error) {
	sc, err := build()
	if err != nil {
		return Model{}, err
	}

	m := Model{
		build:   build,
		scene:   sc,
		dt:      dt,
		canvas:  NewCanvas(canvasW, canvasH),
		running: true,
	}
	m.frameWorld()
	m.initMarkers()
	return m, nil
}

func (m *Model) initMarkers() {
	m.markers = make([]*marker, len(m.scene.Entities))
	for i, e := range m.scene.Entities {
		cfg := e.State.Config()
		m.markers[i] = &marker{rig: orient.NewRig(e.State.SmoothedUp(), cfg.BlendRate, cfg.MaxRotationRate)}
	}
}

// frameWorld sizes the projection so every source's reach, every zone and
// every entity start position fits with a 10% margin.
func (m *Model) frameWorld() {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y, r float64) {
		minX = math.Min(minX, x-r)
		maxX = math.Max(maxX, x+r)
		minY = math.Min(minY, y-r)
		maxY = math.Max(maxY, y+r)
	}

	for _, v := range m.scene.Registry.Snapshot(nil) {
		reach := v.SurfaceRadius
		if !math.IsInf(v.MaxRange, 1) {
			reach = v.MaxRange
		}
		grow(v.Center[0], v.Center[1], reach)
	}
	for _, z := range m.scene.Zones {
		grow(z.Center[0], z.Center[1], z.Radius)
	}
	for _, e := range m.scene.Entities {
		grow(e.Pos[0], e.Pos[1], 0)
	}
	if minX > maxX {
		minX, maxX, minY, maxY = -10, 10, -10, 10
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	cw, ch := float64(canvasW*2), float64(canvasH*4)
	m.minX, m.minY = minX, minY
	m.scale = math.Min(cw/rangeX, ch/rangeY)
	m.offX = (cw - rangeX*m.scale) / 2
	m.offY = (ch - rangeY*m.scale) / 2
}

func (m *Model) project(p mgl64.Vec3) (int, int, bool) {
	sx := (p[0]-m.minX)*m.scale + m.offX
	sy := float64(canvasH*4) - ((p[1]-m.minY)*m.scale + m.offY)
	if math.Abs(sx) > 1e6 || math.Abs(sy) > 1e6 || math.IsNaN(sx) || math.IsNaN(sy) {
		return 0, 0, false
	}
	return int(sx), int(sy), true
}

func (m *Model) scaleLen(r float64) int {
	return int(r*m.scale + 0.5)
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input and advances the scene one tick per frame.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			if n := len(m.scene.Entities); n > 0 {
				m.focus = (m.focus + 1) % n
				m.magHist = m.magHist[:0]
			}
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.scene.Step(m.dt)
			m.observe()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() {
	sc, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.scene = sc
	m.focus = 0
	m.magHist = m.magHist[:0]
	m.initMarkers()
}

func (m *Model) observe() {
	for i, e := range m.scene.Entities {
		mk := m.markers[i]
		mk.rig.Track(e.State.SmoothedUp(), m.dt)
		if x, y, ok := m.project(e.Pos); ok {
			mk.trail = append(mk.trail, struct{ x, y int }{x, y})
			if len(mk.trail) > trailCapacity {
				mk.trail = mk.trail[1:]
			}
		}
	}
	if m.focus < len(m.scene.Entities) {
		m.magHist = append(m.magHist, m.scene.Entities[m.focus].State.FieldMagnitude())
		if len(m.magHist) > historyCapacity {
			m.magHist = m.magHist[1:]
		}
	}
}

func (m *Model) draw() {
	m.canvas.Clear()

	for _, v := range m.scene.Registry.Snapshot(nil) {
		x, y, ok := m.project(v.Center)
		if !ok {
			continue
		}
		m.canvas.FillCircle(x, y, m.scaleLen(v.SurfaceRadius))
		if !math.IsInf(v.MaxRange, 1) {
			m.canvas.DrawCircle(x, y, m.scaleLen(v.MaxRange))
		}
	}
	for _, z := range m.scene.Zones {
		if x, y, ok := m.project(z.Center); ok {
			m.canvas.DrawCircle(x, y, m.scaleLen(z.Radius))
		}
	}
	for i, mk := range m.markers {
		for _, pt := range mk.trail {
			m.canvas.Set(pt.x, pt.y)
		}
		if x, y, ok := m.project(m.scene.Entities[i].Pos); ok {
			m.drawMarker(x, y, mk.rig)
		}
	}
}

// drawMarker renders an oriented T glyph: the long stroke points along the
// rig's up, the crossbar along its lateral.
func (m *Model) drawMarker(x, y int, rig *orient.Rig) {
	const arm = 6
	m.canvas.DrawLine(x, y, x+int(rig.Up[0]*arm), y-int(rig.Up[1]*arm))
	m.canvas.DrawLine(
		x-int(rig.Lateral[0]*arm/2), y+int(rig.Lateral[1]*arm/2),
		x+int(rig.Lateral[0]*arm/2), y-int(rig.Lateral[1]*arm/2))
}

// View renders the map and the stats panel.
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("scene rebuild failed: %v\n", m.err)
	}

	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.scene.Name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.scene.Time())) + "\n")

	if m.focus < len(m.scene.Entities) {
		e := m.scene.Entities[m.focus]
		st := e.State

		s.WriteString(labelStyle.Render("Entity") + valueStyle.Render(e.Name) + "\n")
		s.WriteString(labelStyle.Render("Field") + valueStyle.Render(fmt.Sprintf("%.3f", st.FieldMagnitude())) + "\n")

		dom := "none"
		if st.Dominant() != field.NoSource {
			if src, err := m.scene.Registry.Source(st.Dominant()); err == nil {
				dom = src.Name
			}
		}
		s.WriteString(labelStyle.Render("Dominant") + valueStyle.Render(dom) + "\n")

		badge := WeightedBadge.Render("weighted")
		if st.IsZeroG() {
			badge = ZeroGBadge.Render(" ZERO-G ")
		}
		s.WriteString(labelStyle.Render("State") + badge + "\n")

		up := st.SmoothedUp()
		s.WriteString(labelStyle.Render("Up") + valueStyle.Render(fmt.Sprintf("(%.2f, %.2f, %.2f)", up[0], up[1], up[2])) + "\n")

		lag := mgl64.RadToDeg(orient.AngleBetween(st.SmoothedUp(), st.TargetUp()))
		s.WriteString(labelStyle.Render("Blend lag") + valueStyle.Render(fmt.Sprintf("%.1f deg", lag)) + "\n")
	}

	if len(m.magHist) > 1 {
		hist := m.magHist
		if len(hist) > graphWindow {
			hist = hist[len(hist)-graphWindow:]
		}
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("field magnitude"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if events := m.scene.Events(); len(events) > 0 {
		s.WriteString("\n" + labelStyle.Render("Events") + "\n")
		start := len(events) - 3
		if start < 0 {
			start = 0
		}
		for _, ev := range events[start:] {
			s.WriteString(eventStyle.Render(fmt.Sprintf("%7.2fs %s %s", ev.T, ev.Entity, ev.Kind)) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("space:pause r:reset tab:focus q:quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
