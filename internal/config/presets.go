package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Presets are ready-made scenes, usable by name anywhere a scene file is.
var Presets = map[string]*Scene{
	"single": {
		Name: "single", Dt: 0.02, Duration: 25.0,
		Sources: []SourceConfig{
			{Name: "planet", Center: Vec{0, 0, 0}, Strength: 9.8, Radius: 50},
		},
		Entities: []EntityConfig{
			{Name: "probe", Pos: Vec{0, 300, 0}, FreeFall: true, ZeroGThreshold: 0.25},
		},
	},
	"binary": {
		Name: "binary", Dt: 0.02, Duration: 20.0,
		Sources: []SourceConfig{
			{Name: "alpha", Center: Vec{0, 0, 0}, Strength: 9.8, Radius: 50},
			{Name: "beta", Center: Vec{300, 0, 0}, Strength: 9.8, Radius: 50},
		},
		Entities: []EntityConfig{
			{
				Name: "probe", Pos: Vec{50, 0, 0}, ZeroGThreshold: 0.25,
				Path: &PathConfig{Kind: "line", Velocity: Vec{10, 0, 0}},
			},
		},
	},
	"corridor": {
		Name: "corridor", Dt: 0.02, Duration: 30.0,
		Sources: []SourceConfig{
			{Name: "west", Center: Vec{-400, 0, 0}, Strength: 9.8, Radius: 60},
			{Name: "east", Center: Vec{400, 0, 0}, Strength: 9.8, Radius: 60},
		},
		Zones: []ZoneConfig{
			{Name: "dock", Center: Vec{0, 0, 0}, Radius: 150, ForcedZero: true, SmoothBlend: true},
		},
		Entities: []EntityConfig{
			{
				Name: "ferry", Pos: Vec{-300, 0, 0}, ZeroGThreshold: 0.25, ZeroGExitFactor: 1.15,
				Path: &PathConfig{Kind: "line", Velocity: Vec{20, 0, 0}},
			},
			{Name: "station", Pos: Vec{0, 50, 0}, ZeroGThreshold: 0.25},
		},
	},
	"patrol": {
		Name: "patrol", Dt: 0.02, Duration: 60.0,
		Sources: []SourceConfig{
			{Name: "planet", Center: Vec{0, 0, 0}, Strength: 9.8, Radius: 50},
			{
				Name: "moon", Center: Vec{-150, 0, 0}, Strength: 3.0, Radius: 20,
				Path: &PathConfig{Kind: "orbit", Center: Vec{0, 0, 0}, Radius: 150, Period: 40, Phase: 3.14159265},
			},
		},
		Entities: []EntityConfig{
			{Name: "station", Pos: Vec{150, 0, 0}, ZeroGThreshold: 0.1, BlendRateDeg: 120},
		},
	},
	"flyby": {
		Name: "flyby", Dt: 0.02, Duration: 30.0,
		Sources: []SourceConfig{
			{Name: "giant", Center: Vec{0, -500, 0}, Strength: 30, Radius: 100, Participation: "contributes_only"},
			{Name: "beacon", Center: Vec{0, 300, 0}, Strength: 5, Radius: 30, Priority: 1, Participation: "dominant_only"},
			{Name: "pebble", Center: Vec{200, 0, 0}, Strength: 2, Radius: 10},
		},
		Entities: []EntityConfig{
			{Name: "probe", Pos: Vec{0, 0, 0}, Vel: Vec{15, 0, 0}, FreeFall: true, ZeroGThreshold: 0.05},
		},
	},
}

func GetPreset(name string) *Scene {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve accepts either a scene file path or a preset name. Presets come
// back cloned, so the result is always safe to mutate.
func Resolve(name string) (*Scene, error) {
	if _, err := os.Stat(name); err == nil {
		return Load(name)
	}
	if cfg := GetPreset(name); cfg != nil {
		return cfg.Clone(), nil
	}
	return nil, fmt.Errorf("no scene file or preset named %q (presets: %s)",
		name, strings.Join(ListPresets(), ", "))
}
