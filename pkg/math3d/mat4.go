package math3d

import "math"

// Mat4 is a 4x4 matrix in column-major order, so the flat indices run
// down each column:
//
//	| 0  4   8  12 |
//	| 1  5   9  13 |
//	| 2  6  10  14 |
//	| 3  7  11  15 |
//
// An affine transform keeps its basis vectors in the first three
// columns and its translation in elements 12 through 14.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate builds a transform that moves points by v.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale builds a transform that scales each axis by the matching
// component of v.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform scales all three axes by s.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX builds a rotation of angle radians around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY builds a rotation of angle radians around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ builds a rotation of angle radians around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// LookAt builds a right-handed view matrix for a camera at eye looking
// toward center, with up fixing the roll. View space looks down -Z.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	r := f.Cross(up).Normalize()
	u := r.Cross(f)

	return Mat4{
		r.X, u.X, -f.X, 0,
		r.Y, u.Y, -f.Y, 0,
		r.Z, u.Z, -f.Z, 0,
		-r.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// PerspectiveZO creates a perspective projection matrix with a zero-to-one
// depth range: clip z is 0 at the near plane and w at the far plane. A vertex
// is behind the near plane exactly when its clip z is negative, which is the
// test the rasterizer's near-plane clipper relies on.
func PerspectiveZO(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * nf, -1,
		0, 0, far * near * nf, 0,
	}
}

// Mul returns the product m * n. Applied to a column vector the result
// runs n first, then m.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += m[row+k*4] * n[k+col*4]
			}
			out[row+col*4] = sum
		}
	}
	return out
}

// MulVec3 transforms v as a position, with an implicit w of 1. A
// projective bottom row triggers the homogeneous divide; affine
// transforms skip it.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	x := m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y := m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z := m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 1 || w == 0 {
		return Vec3{x, y, z}
	}
	return Vec3{x / w, y / w, z / w}
}

// MulVec3Dir transforms v as a direction: rotation and scale apply,
// translation does not.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns m with rows and columns swapped.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Inverse returns the matrix that undoes m. A singular matrix has no
// inverse and comes back as the identity.
//
// The cofactors share twelve 2x2 subdeterminants: s covers the top two
// rows, c the bottom two.
func (m Mat4) Inverse() Mat4 {
	s0 := m[0]*m[5] - m[1]*m[4]
	s1 := m[0]*m[9] - m[1]*m[8]
	s2 := m[0]*m[13] - m[1]*m[12]
	s3 := m[4]*m[9] - m[5]*m[8]
	s4 := m[4]*m[13] - m[5]*m[12]
	s5 := m[8]*m[13] - m[9]*m[12]

	c0 := m[2]*m[7] - m[3]*m[6]
	c1 := m[2]*m[11] - m[3]*m[10]
	c2 := m[2]*m[15] - m[3]*m[14]
	c3 := m[6]*m[11] - m[7]*m[10]
	c4 := m[6]*m[15] - m[7]*m[14]
	c5 := m[10]*m[15] - m[11]*m[14]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity()
	}
	id := 1.0 / det

	return Mat4{
		(m[5]*c5 - m[9]*c4 + m[13]*c3) * id,
		(-m[1]*c5 + m[9]*c2 - m[13]*c1) * id,
		(m[1]*c4 - m[5]*c2 + m[13]*c0) * id,
		(-m[1]*c3 + m[5]*c1 - m[9]*c0) * id,

		(-m[4]*c5 + m[8]*c4 - m[12]*c3) * id,
		(m[0]*c5 - m[8]*c2 + m[12]*c1) * id,
		(-m[0]*c4 + m[4]*c2 - m[12]*c0) * id,
		(m[0]*c3 - m[4]*c1 + m[8]*c0) * id,

		(m[7]*s5 - m[11]*s4 + m[15]*s3) * id,
		(-m[3]*s5 + m[11]*s2 - m[15]*s1) * id,
		(m[3]*s4 - m[7]*s2 + m[15]*s0) * id,
		(-m[3]*s3 + m[7]*s1 - m[11]*s0) * id,

		(-m[6]*s5 + m[10]*s4 - m[14]*s3) * id,
		(m[2]*s5 - m[10]*s2 + m[14]*s1) * id,
		(-m[2]*s4 + m[6]*s2 - m[14]*s0) * id,
		(m[2]*s3 - m[6]*s1 + m[10]*s0) * id,
	}
}
