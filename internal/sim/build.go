package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/config"
	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/solver"
)

// FromConfig assembles a live scene from its declaration. All source,
// zone and entity validation happens here, before anything ticks.
func FromConfig(cfg *config.Scene) (*Scene, error) {
	sc := NewScene(cfg.Name)

	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		part, err := field.ParseParticipation(s.Participation)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", s.Name, err)
		}
		maxRange := s.MaxRange
		if maxRange == 0 {
			maxRange = math.Inf(1)
		}
		src := &field.Source{
			Name:            s.Name,
			Center:          s.Center.Vec3(),
			SurfaceStrength: s.Strength,
			SurfaceRadius:   s.Radius,
			MaxRange:        maxRange,
			Priority:        s.Priority,
			Participation:   part,
		}
		path, err := buildPath(s.Path, s.Center.Vec3())
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", s.Name, err)
		}
		if _, err := sc.AddBody(src, path); err != nil {
			return nil, err
		}
	}

	for _, z := range cfg.Zones {
		zone := field.Zone{
			Name:        z.Name,
			Center:      z.Center.Vec3(),
			Radius:      z.Radius,
			ForcedZero:  z.ForcedZero,
			SmoothBlend: z.SmoothBlend,
		}
		if err := sc.AddZone(zone); err != nil {
			return nil, err
		}
	}

	for _, e := range cfg.Entities {
		blend := e.BlendRateDeg
		if blend == 0 {
			blend = config.DefaultBlendDeg
		}
		exit := e.ZeroGExitFactor
		if exit == 0 {
			exit = config.DefaultExitFactor
		}
		up := e.Up.Vec3()
		if up.Len() == 0 {
			up = mgl64.Vec3{0, 1, 0}
		}
		scfg := solver.Config{
			ZeroGThreshold:  e.ZeroGThreshold,
			ZeroGExitFactor: exit,
			BlendRate:       mgl64.DegToRad(blend),
			MaxRotationRate: mgl64.DegToRad(e.MaxRateDeg),
			InitialUp:       up,
		}
		ent, err := sc.AddEntity(e.Name, e.Pos.Vec3(), scfg)
		if err != nil {
			return nil, err
		}
		ent.Vel = e.Vel.Vec3()
		ent.FreeFall = e.FreeFall
		path, err := buildPath(e.Path, e.Pos.Vec3())
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", e.Name, err)
		}
		ent.Path = path
	}

	return sc, nil
}

// RunConfig maps the scene declaration's run parameters.
func RunConfig(cfg *config.Scene) Config {
	return Config{
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Parallel: cfg.Parallel,
		Record:   true,
	}
}

func buildPath(p *config.PathConfig, origin mgl64.Vec3) (Path, error) {
	if p == nil {
		return nil, nil
	}
	switch p.Kind {
	case "static":
		return StaticPath{At: origin}, nil
	case "line":
		return LinePath{Origin: origin, Velocity: p.Velocity.Vec3()}, nil
	case "orbit":
		if p.Period <= 0 {
			return nil, fmt.Errorf("orbit period must be positive, got %f", p.Period)
		}
		return OrbitPath{
			Center: p.Center.Vec3(),
			Radius: p.Radius,
			Period: p.Period,
			Phase:  p.Phase,
		}, nil
	}
	return nil, fmt.Errorf("unknown path kind %q", p.Kind)
}
