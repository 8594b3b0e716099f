package scene

// VirtualCamera maps normalized screen fractions onto a fixed world-space
// plane so 2D GUI coordinates land predictably in the 3D scene whatever the
// display resolution. The view is square: the vertical field of view equals
// the horizontal one.
type VirtualCamera struct {
	// Width is the world-space width of the plane at Depth.
	Width float64
	Depth float64
}

// GUICamera is the camera every generated dialog renders through: a
// 20-unit-wide plane at depth 100.
var GUICamera = VirtualCamera{Width: 20, Depth: 100}

// ScreenToWorld maps a screen fraction onto the camera plane.
func (c VirtualCamera) ScreenToWorld(x, y float64) Vec3 {
	return Vec3{
		X: (x - 0.5) * c.Width,
		Y: (0.5 - y) * c.Width,
		Z: c.Depth,
	}
}

// ScreenToWorldAt maps a screen fraction onto a plane at depth z.
func (c VirtualCamera) ScreenToWorldAt(x, y, z float64) Vec3 {
	p := c.ScreenToWorld(x, y)
	if z <= 0 || c.Depth <= 0 {
		return p
	}
	s := z / c.Depth
	return Vec3{X: p.X * s, Y: p.Y * s, Z: z}
}

// WorldToScreen projects p to screen fractions. The returned Z is p's depth.
func (c VirtualCamera) WorldToScreen(p Vec3) Vec3 {
	s := 1.0
	if p.Z > 0 && c.Depth > 0 {
		s = c.Depth / p.Z
	}
	return Vec3{
		X: 0.5 + p.X*s/c.Width,
		Y: 0.5 - p.Y*s/c.Width,
		Z: p.Z,
	}
}

// ScreenLength converts a screen-fraction length to world units on the plane.
func (c VirtualCamera) ScreenLength(l float64) float64 {
	return l * c.Width
}
