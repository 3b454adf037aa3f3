package render

import (
	"math"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// Camera is a perspective camera with a pitch/yaw/roll orientation.
// The setters invalidate the cached matrices; the getters rebuild all
// three together on the next read, so a view-projection read never
// pairs a fresh view with a stale product.
type Camera struct {
	Position math3d.Vec3

	// Orientation in radians. Positive yaw turns left around +Y,
	// positive pitch raises the view, roll tilts around the view axis.
	Pitch float64
	Yaw   float64
	Roll  float64

	FOV         float64 // vertical, in radians
	AspectRatio float64 // width over height
	Near        float64
	Far         float64

	view     math3d.Mat4
	proj     math3d.Mat4
	viewProj math3d.Mat4
	dirty    bool
}

// NewCamera returns a camera framing the origin from slightly above,
// with a 60 degree field of view.
func NewCamera() *Camera {
	c := &Camera{
		Position:    math3d.V3(0, 1, 4),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
	}
	c.LookAt(math3d.Zero3())
	return c
}

// SetPosition moves the camera to pos.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.dirty = true
}

// SetRotation sets pitch, yaw, and roll in radians.
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pitch, c.Yaw, c.Roll = pitch, yaw, roll
	c.dirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.dirty = true
}

// SetAspectRatio sets the width over height ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.dirty = true
}

// SetClipPlanes sets the near and far clip distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near, c.Far = near, far
	c.dirty = true
}

// Forward returns the direction the camera looks along.
func (c *Camera) Forward() math3d.Vec3 {
	cp := math.Cos(c.Pitch)
	return math3d.V3(-math.Sin(c.Yaw)*cp, math.Sin(c.Pitch), -math.Cos(c.Yaw)*cp)
}

// MoveForward dollies the camera along its view direction, backward
// for negative distances.
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Add(c.Forward().Scale(distance))
	c.dirty = true
}

// Orbit swings the camera around center by the given yaw and pitch
// deltas, keeping it aimed at center with its distance unchanged.
// Pitch stops short of the poles so the look-at frame stays well
// defined.
func (c *Camera) Orbit(center math3d.Vec3, deltaYaw, deltaPitch float64) {
	offset := c.Position.Sub(center)
	radius := offset.Len()
	if radius == 0 {
		return
	}

	yaw := math.Atan2(offset.X, offset.Z) + deltaYaw
	pitch := math.Asin(offset.Y/radius) + deltaPitch
	const limit = math.Pi/2 - 0.01
	pitch = math.Max(-limit, math.Min(limit, pitch))

	cp := math.Cos(pitch)
	c.Position = center.Add(math3d.V3(
		radius*cp*math.Sin(yaw),
		radius*math.Sin(pitch),
		radius*cp*math.Cos(yaw),
	))
	c.LookAt(center)
}

// LookAt orients the camera toward target and levels the roll.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()

	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.Roll = 0
	c.dirty = true
}

// refresh rebuilds the cached matrices after a parameter change.
func (c *Camera) refresh() {
	if !c.dirty {
		return
	}

	rot := math3d.RotateZ(-c.Roll).
		Mul(math3d.RotateX(-c.Pitch)).
		Mul(math3d.RotateY(-c.Yaw))
	c.view = rot.Mul(math3d.Translate(c.Position.Negate()))
	c.proj = math3d.PerspectiveZO(c.FOV, c.AspectRatio, c.Near, c.Far)
	c.viewProj = c.proj.Mul(c.view)
	c.dirty = false
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.refresh()
	return c.view
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	c.refresh()
	return c.proj
}

// ViewProjectionMatrix returns the combined world-to-clip transform.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	c.refresh()
	return c.viewProj
}

// Context builds the per-frame shader context for this camera. The
// caller fills in lights and any per-frame extras before handing it to
// Pipeline.BeginFrame.
func (c *Camera) Context() ShaderContext {
	c.refresh()
	return ShaderContext{
		View:       c.view,
		Projection: c.proj,
		CameraPos:  c.Position,
		Near:       c.Near,
		Far:        c.Far,
	}
}
