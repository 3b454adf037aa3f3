package render

import (
	"math"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// Plane is one half-space boundary of the view volume. A point p is on
// the inside when Normal.Dot(p) + D >= 0; normals point into the
// frustum interior.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Distance returns the signed distance from the plane to a point.
// Positive means inside the half-space.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// normalized rescales the plane equation to unit normal length so that
// Distance returns true euclidean distances.
func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}

// Frustum plane indices in extraction order.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum is the view volume as six inward-facing planes. The pipeline
// extracts one per frame and culls whole meshes against it before the
// vertex stage; per-triangle exactness at the near plane stays with the
// clipper.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum derives the clip planes from a combined view-projection
// matrix by the Gribb/Hartmann row method. The projection maps depth to
// [0,1], so the lower depth bound is the z row alone and the near plane
// lands exactly at the camera's near distance.
func ExtractFrustum(m math3d.Mat4) Frustum {
	// m is column-major: row i element j lives at m[i+j*4].
	r0 := math3d.V4(m[0], m[4], m[8], m[12])
	r1 := math3d.V4(m[1], m[5], m[9], m[13])
	r2 := math3d.V4(m[2], m[6], m[10], m[14])
	r3 := math3d.V4(m[3], m[7], m[11], m[15])

	var f Frustum
	f.Planes[PlaneLeft] = planeFromRow(r3.Add(r0))
	f.Planes[PlaneRight] = planeFromRow(r3.Sub(r0))
	f.Planes[PlaneBottom] = planeFromRow(r3.Add(r1))
	f.Planes[PlaneTop] = planeFromRow(r3.Sub(r1))
	f.Planes[PlaneNear] = planeFromRow(r2)
	f.Planes[PlaneFar] = planeFromRow(r3.Sub(r2))
	return f
}

func planeFromRow(r math3d.Vec4) Plane {
	return Plane{Normal: r.Vec3(), D: r.W}.normalized()
}

// AABB is an axis-aligned box kept as its min and max corners.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box dimensions.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// ContainsPoint returns true if the point is inside the box.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns the axis-aligned bounds of the box under an affine
// transform. Rather than transforming all eight corners it maps the
// center and grows the extents by the absolute rotation-scale rows,
// which bounds the same volume.
func (b AABB) Transform(m math3d.Mat4) AABB {
	center := m.MulVec3(b.Center())
	e := b.Size().Scale(0.5)
	ext := math3d.V3(
		math.Abs(m[0])*e.X+math.Abs(m[4])*e.Y+math.Abs(m[8])*e.Z,
		math.Abs(m[1])*e.X+math.Abs(m[5])*e.Y+math.Abs(m[9])*e.Z,
		math.Abs(m[2])*e.X+math.Abs(m[6])*e.Y+math.Abs(m[10])*e.Z,
	)
	return AABB{Min: center.Sub(ext), Max: center.Add(ext)}
}

// cornerToward returns the box corner furthest along dir.
func (b AABB) cornerToward(dir math3d.Vec3) math3d.Vec3 {
	c := b.Min
	if dir.X >= 0 {
		c.X = b.Max.X
	}
	if dir.Y >= 0 {
		c.Y = b.Max.Y
	}
	if dir.Z >= 0 {
		c.Z = b.Max.Z
	}
	return c
}

// cornerAway returns the box corner furthest against dir.
func (b AABB) cornerAway(dir math3d.Vec3) math3d.Vec3 {
	c := b.Max
	if dir.X >= 0 {
		c.X = b.Min.X
	}
	if dir.Y >= 0 {
		c.Y = b.Min.Y
	}
	if dir.Z >= 0 {
		c.Z = b.Min.Z
	}
	return c
}

// IntersectsAABB reports whether any part of the box reaches inside the
// frustum. Only the corner furthest along each plane normal is tested;
// when that corner is behind a plane the whole box is.
func (f Frustum) IntersectsAABB(box AABB) bool {
	for i := range f.Planes {
		p := f.Planes[i]
		if p.Distance(box.cornerToward(p.Normal)) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether the box sits entirely inside the frustum.
func (f Frustum) ContainsAABB(box AABB) bool {
	for i := range f.Planes {
		p := f.Planes[i]
		if p.Distance(box.cornerAway(p.Normal)) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a world-space point is inside the
// frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a bounding sphere reaches inside the
// frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(center) < -radius {
			return false
		}
	}
	return true
}
