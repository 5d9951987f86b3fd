package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.02
	DefaultDuration   = 30.0
	DefaultThreshold  = 0.25
	DefaultBlendDeg   = 90.0
	DefaultExitFactor = 1.0
)

// Vec is a [x, y, z] triple in scene files.
type Vec [3]float64

func (v Vec) Vec3() mgl64.Vec3 { return mgl64.Vec3{v[0], v[1], v[2]} }

// Scene describes a complete setup: sources, zones and entities, plus the
// run parameters.
type Scene struct {
	Name     string         `yaml:"name"`
	Dt       float64        `yaml:"dt"`
	Duration float64        `yaml:"duration"`
	Parallel bool           `yaml:"parallel,omitempty"`
	Sources  []SourceConfig `yaml:"sources"`
	Zones    []ZoneConfig   `yaml:"zones,omitempty"`
	Entities []EntityConfig `yaml:"entities"`
}

// SourceConfig declares one gravity source. MaxRange 0 means unlimited.
type SourceConfig struct {
	Name          string      `yaml:"name"`
	Center        Vec         `yaml:"center"`
	Strength      float64     `yaml:"strength"`
	Radius        float64     `yaml:"radius"`
	MaxRange      float64     `yaml:"max_range,omitempty"`
	Priority      int         `yaml:"priority,omitempty"`
	Participation string      `yaml:"participation,omitempty"`
	Path          *PathConfig `yaml:"path,omitempty"`
}

// PathConfig scripts motion for a source or entity. Kind is "line" or
// "orbit".
type PathConfig struct {
	Kind     string  `yaml:"kind"`
	Velocity Vec     `yaml:"velocity,omitempty"`
	Center   Vec     `yaml:"center,omitempty"`
	Radius   float64 `yaml:"radius,omitempty"`
	Period   float64 `yaml:"period,omitempty"`
	Phase    float64 `yaml:"phase,omitempty"`
}

type ZoneConfig struct {
	Name        string  `yaml:"name"`
	Center      Vec     `yaml:"center"`
	Radius      float64 `yaml:"radius"`
	ForcedZero  bool    `yaml:"forced_zero"`
	SmoothBlend bool    `yaml:"smooth_blend,omitempty"`
}

// EntityConfig declares one solved entity. Angular rates are degrees per
// second: blend_rate_deg 0 picks the default, max_rate_deg 0 means
// uncapped. A zero up vector defaults to +y.
type EntityConfig struct {
	Name            string      `yaml:"name"`
	Pos             Vec         `yaml:"pos"`
	Vel             Vec         `yaml:"vel,omitempty"`
	FreeFall        bool        `yaml:"free_fall,omitempty"`
	Path            *PathConfig `yaml:"path,omitempty"`
	ZeroGThreshold  float64     `yaml:"zero_g_threshold"`
	ZeroGExitFactor float64     `yaml:"zero_g_exit_factor,omitempty"`
	BlendRateDeg    float64     `yaml:"blend_rate_deg,omitempty"`
	MaxRateDeg      float64     `yaml:"max_rate_deg,omitempty"`
	Up              Vec         `yaml:"up,omitempty"`
}

func DefaultScene() *Scene {
	return &Scene{
		Name:     "scene",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
	}
}

// Clone returns an independent copy. Callers that tweak a preset must
// clone first so the shared table stays pristine.
func (s *Scene) Clone() *Scene {
	out := *s
	out.Sources = make([]SourceConfig, len(s.Sources))
	copy(out.Sources, s.Sources)
	for i := range out.Sources {
		if p := out.Sources[i].Path; p != nil {
			cp := *p
			out.Sources[i].Path = &cp
		}
	}
	out.Zones = append([]ZoneConfig(nil), s.Zones...)
	out.Entities = make([]EntityConfig, len(s.Entities))
	copy(out.Entities, s.Entities)
	for i := range out.Entities {
		if p := out.Entities[i].Path; p != nil {
			cp := *p
			out.Entities[i].Path = &cp
		}
	}
	return &out
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultScene()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Scene) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
