package render

import (
	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// Wireframe draws debug geometry straight over a composed frame: world
// grid, axes, bounding boxes, light markers. Lines bypass the pipeline
// and carry no depth, so they always land on top.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a debug overlay for the camera and framebuffer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a world-space line segment. The segment is clipped
// against the camera near plane first; projecting an endpoint from
// behind the camera would mirror it across the screen.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c Color) {
	vp := w.camera.ViewProjectionMatrix()
	near := planeFromRow(math3d.V4(vp[2], vp[6], vp[10], vp[14]))

	d1 := near.Distance(p1)
	d2 := near.Distance(p2)
	if d1 < 0 && d2 < 0 {
		return
	}
	if d1 < 0 {
		p1 = p1.Lerp(p2, d1/(d1-d2))
	} else if d2 < 0 {
		p2 = p2.Lerp(p1, d2/(d2-d1))
	}

	x1, y1 := w.project(vp, p1)
	x2, y2 := w.project(vp, p2)
	w.fb.DrawLine(x1, y1, x2, y2, c)
}

// project maps a world point in front of the near plane to pixel
// coordinates. Offscreen results are fine; DrawLine bounds-checks every
// pixel it touches.
func (w *Wireframe) project(vp math3d.Mat4, p math3d.Vec3) (int, int) {
	ndc := vp.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide()
	x := (ndc.X + 1) * 0.5 * float64(w.fb.Width)
	y := (1 - ndc.Y) * 0.5 * float64(w.fb.Height)
	return int(x), int(y)
}

// DrawBounds draws the 12 edges of a world-space bounding box.
func (w *Wireframe) DrawBounds(box AABB, c Color) {
	mn, mx := box.Min, box.Max
	corners := [8]math3d.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
	}

	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // min-z face
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // max-z face
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	for _, e := range edges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], c)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XZ plane at y=0.
func (w *Wireframe) DrawGrid(size, step float64, c Color) {
	half := size / 2
	for x := -half; x <= half; x += step {
		w.DrawLine3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), c)
	}
	for z := -half; z <= half; z += step {
		w.DrawLine3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), c)
	}
}

// DrawMarker draws a point as a small three-axis cross.
func (w *Wireframe) DrawMarker(pos math3d.Vec3, size float64, c Color) {
	h := size / 2
	w.DrawLine3D(math3d.V3(pos.X-h, pos.Y, pos.Z), math3d.V3(pos.X+h, pos.Y, pos.Z), c)
	w.DrawLine3D(math3d.V3(pos.X, pos.Y-h, pos.Z), math3d.V3(pos.X, pos.Y+h, pos.Z), c)
	w.DrawLine3D(math3d.V3(pos.X, pos.Y, pos.Z-h), math3d.V3(pos.X, pos.Y, pos.Z+h), c)
}
