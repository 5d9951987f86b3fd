// Package sim hosts gravity scenes: a source registry, stable zones, the
// bodies that move sources around and the entities solved against them,
// advanced on a fixed tick.
package sim

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/solver"
)

// Event kinds recorded from entity transitions.
const (
	EventEnteredZeroG    = "entered_zero_g"
	EventExitedZeroG     = "exited_zero_g"
	EventDominantChanged = "dominant_changed"
)

// Event is one edge-triggered transition, timestamped with scene time.
type Event struct {
	T      float64
	Entity string
	Kind   string
	Prev   field.SourceID
	Next   field.SourceID
}

// Metric observes one entity per tick and reduces to a single value.
type Metric interface {
	Name() string
	Observe(e *Entity, t float64)
	Value() float64
	Reset()
}

// Observer taps every scene tick after the solver pass.
type Observer interface {
	OnTick(sc *Scene, t float64)
}

// Body pins a registered source to a motion path. A nil path leaves the
// source wherever its owner put it.
type Body struct {
	Source *field.Source
	ID     field.SourceID
	Path   Path
}

func (b *Body) advance(t float64) {
	if b.Path != nil {
		b.Source.Center = b.Path.Pos(t)
	}
}

// Entity is a solved probe. With a Path it follows the script; with
// FreeFall it integrates the previous tick's field semi-implicitly;
// otherwise it stays put.
type Entity struct {
	Name     string
	Pos      mgl64.Vec3
	Vel      mgl64.Vec3
	FreeFall bool
	Path     Path
	State    *solver.State
}

func (e *Entity) move(t, dt float64) {
	switch {
	case e.Path != nil:
		e.Pos = e.Path.Pos(t)
	case e.FreeFall:
		e.Vel = e.Vel.Add(e.State.CurrentField().Mul(dt))
		e.Pos = e.Pos.Add(e.Vel.Mul(dt))
	}
}

// Scene owns the registry and everything stepping against it. Not safe for
// concurrent use: one goroutine drives Step, everyone else reads between
// ticks.
type Scene struct {
	Name     string
	Registry *field.Registry
	Zones    []field.Zone
	Bodies   []*Body
	Entities []*Entity

	sv        *solver.Solver
	metrics   []Metric
	observers []Observer
	events    []Event
	evMu      sync.Mutex
	snap      []field.SourceView
	parallel  bool
	t         float64
}

func NewScene(name string) *Scene {
	reg := field.NewRegistry()
	return &Scene{
		Name:     name,
		Registry: reg,
		sv:       solver.New(reg, nil),
	}
}

// AddBody registers src and binds it to path (nil for a fixed source).
func (sc *Scene) AddBody(src *field.Source, path Path) (*Body, error) {
	id, err := sc.Registry.Register(src)
	if err != nil {
		return nil, err
	}
	b := &Body{Source: src, ID: id, Path: path}
	sc.Bodies = append(sc.Bodies, b)
	return b, nil
}

// AddZone validates and installs a stable zone.
func (sc *Scene) AddZone(z field.Zone) error {
	if err := z.Validate(); err != nil {
		return err
	}
	sc.Zones = append(sc.Zones, z)
	sc.sv = solver.New(sc.Registry, sc.Zones)
	return nil
}

// AddEntity creates a solved entity at pos. Transitions are recorded into
// the scene event log automatically.
func (sc *Scene) AddEntity(name string, pos mgl64.Vec3, cfg solver.Config) (*Entity, error) {
	st, err := solver.NewState(cfg)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", name, err)
	}
	e := &Entity{Name: name, Pos: pos, State: st}
	st.Subscribe(solver.Hooks{
		EnteredZeroG: func() {
			sc.appendEvent(Event{T: sc.t, Entity: e.Name, Kind: EventEnteredZeroG})
		},
		ExitedZeroG: func() {
			sc.appendEvent(Event{T: sc.t, Entity: e.Name, Kind: EventExitedZeroG})
		},
		DominantChanged: func(prev, next field.SourceID) {
			sc.appendEvent(Event{T: sc.t, Entity: e.Name, Kind: EventDominantChanged, Prev: prev, Next: next})
		},
	})
	sc.Entities = append(sc.Entities, e)
	return e, nil
}

func (sc *Scene) AddMetric(m Metric)     { sc.metrics = append(sc.metrics, m) }
func (sc *Scene) AddObserver(o Observer) { sc.observers = append(sc.observers, o) }

// Time is the scene clock, advanced by Step.
func (sc *Scene) Time() float64 { return sc.t }

// Events returns the transition log accumulated so far.
func (sc *Scene) Events() []Event { return sc.events }

// appendEvent serializes hook appends: the parallel entity pass fires
// hooks from worker goroutines.
func (sc *Scene) appendEvent(ev Event) {
	sc.evMu.Lock()
	sc.events = append(sc.events, ev)
	sc.evMu.Unlock()
}

// Step advances the scene one tick: bodies move their sources, entities
// move themselves on last tick's state, the solver pass refreshes every
// entity, then metrics and observers run.
func (sc *Scene) Step(dt float64) {
	sc.t += dt
	for _, b := range sc.Bodies {
		b.advance(sc.t)
	}
	for _, e := range sc.Entities {
		e.move(sc.t, dt)
	}

	if sc.parallel && len(sc.Entities) > 1 {
		sc.snap = sc.Registry.Snapshot(sc.snap)
		psv := solver.New(field.Views(sc.snap), sc.Zones)
		ParallelFor(len(sc.Entities), func(i int) {
			psv.Step(sc.Entities[i].State, sc.Entities[i].Pos, dt)
		})
	} else {
		for _, e := range sc.Entities {
			sc.sv.Step(e.State, e.Pos, dt)
		}
	}

	for _, m := range sc.metrics {
		for _, e := range sc.Entities {
			m.Observe(e, sc.t)
		}
	}
	for _, o := range sc.observers {
		o.OnTick(sc, sc.t)
	}
}
