// Package scene holds the narrow collaborator surface the GUI layer needs from
// the engine: drawables, materials, text surfaces, scene groups and placement.
// Rendering itself lives in the backends under pkg/engine/render.
package scene

import (
	"image/color"
	"math"
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max Vec3
}

// Center returns the middle of b.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extend grows b to contain p.
func (b Bounds) Extend(p Vec3) Bounds {
	b.Min = Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)}
	b.Max = Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)}
	return b
}

// Transform places an object relative to its parent. GUI objects never
// rotate, so a translation and uniform scale are enough.
type Transform struct {
	Translate Vec3
	Scale     float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{Scale: 1}

// Apply maps p through t.
func (t Transform) Apply(p Vec3) Vec3 {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return p.Scale(s).Add(t.Translate)
}

// Then returns the transform applying t first and then parent.
func (t Transform) Then(parent Transform) Transform {
	ps := parent.Scale
	if ps == 0 {
		ps = 1
	}
	ts := t.Scale
	if ts == 0 {
		ts = 1
	}
	return Transform{Translate: parent.Apply(t.Translate), Scale: ts * ps}
}

// Surface is an off-screen bitmap that text can be drawn onto and measured
// against. Text metrics need a live surface with a font set.
type Surface interface {
	Size() (w, h int)
	SetFont(face string, size float64)
	ClearToColor(c color.Color)
	SetTextColor(c color.Color)
	DrawString(x, y int, s string)
	MeasureString(s string) (w, h int)
	Dispose()
}

// Surfaces creates off-screen surfaces.
type Surfaces interface {
	CreateBlankSurface(w, h int) Surface
}

// Screen reports the current display size in pixels.
type Screen interface {
	ScreenSize() (w, h int)
}

// Backend is everything the GUI layer needs from a renderer.
type Backend interface {
	Surfaces
	Screen
}
