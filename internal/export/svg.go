package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/gravfield/internal/field"
	"github.com/san-kum/gravfield/internal/sim"
)

// Trail is one entity's recorded path, drawn on the XY plane.
type Trail struct {
	Name   string
	Points []mgl64.Vec3
}

var trailColors = []string{"#00ff00", "#ff9f1c", "#ff2fd6", "#27d7ff", "#fffa7a"}

// SceneToSVG draws an XY-plane map of a field setup: source discs with
// max-range rings, stable zones as dashed circles, and one polyline per
// trail. Z coordinates are dropped. Returns "" when there is nothing to
// draw.
func SceneToSVG(views field.Views, zones []field.Zone, trails []Trail, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y, r float64) {
		minX = math.Min(minX, x-r)
		maxX = math.Max(maxX, x+r)
		minY = math.Min(minY, y-r)
		maxY = math.Max(maxY, y+r)
	}

	for _, v := range views {
		reach := v.SurfaceRadius
		if !math.IsInf(v.MaxRange, 1) {
			reach = v.MaxRange
		}
		grow(v.Center[0], v.Center[1], reach)
	}
	for _, z := range zones {
		grow(z.Center[0], z.Center[1], z.Radius)
	}
	for _, tr := range trails {
		for _, p := range tr.Points {
			grow(p[0], p[1], 0)
		}
	}
	if minX > maxX {
		return ""
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

	// Uniform scale keeps circles round regardless of the viewport shape.
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)
	offX := (float64(width) - rangeX*scale) / 2
	offY := (float64(height) - rangeY*scale) / 2

	sx := func(x float64) float64 { return (x-minX)*scale + offX }
	sy := func(y float64) float64 { return float64(height) - ((y-minY)*scale + offY) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, v := range views {
		cx, cy := sx(v.Center[0]), sy(v.Center[1])
		if !math.IsInf(v.MaxRange, 1) {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#2a4a6a" stroke-dasharray="6,4"/>
`, cx, cy, v.MaxRange*scale))
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#4a9eff"/>
`, cx, cy, v.SurfaceRadius*scale))
	}

	for _, z := range zones {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#00ff88" stroke-dasharray="3,3"/>
`, sx(z.Center[0]), sy(z.Center[1]), z.Radius*scale))
	}

	for i, tr := range trails {
		if len(tr.Points) < 2 {
			continue
		}
		color := trailColors[i%len(trailColors)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, p := range tr.Points {
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", sx(p[0]), sy(p[1])))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", sx(p[0]), sy(p[1])))
			}
		}
		sb.WriteString("\"/>\n")
	}

	return sb.String() + "</svg>"
}

// Trails extracts per-entity paths from recorded ticks, one trail per
// entity in the order the names are given.
func Trails(names []string, ticks [][]sim.EntityTick) []Trail {
	trails := make([]Trail, len(names))
	for i, name := range names {
		trails[i] = Trail{Name: name}
	}
	for _, row := range ticks {
		for i := range trails {
			if i < len(row) {
				trails[i].Points = append(trails[i].Points, row[i].Pos)
			}
		}
	}
	return trails
}
