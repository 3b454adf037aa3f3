package math3d

// Vec2 is a 2D vector. The renderer uses it for texture coordinates,
// so the surface is deliberately small: construction plus the affine
// arithmetic that attribute interpolation needs.
type Vec2 struct {
	X, Y float64
}

// V2 builds a Vec2 from its components.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns v + w.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{v.X + w.X, v.Y + w.Y}
}

// Sub returns v - w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{v.X - w.X, v.Y - w.Y}
}

// Scale multiplies both components of v by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}
