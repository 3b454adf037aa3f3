package models

import (
	"math"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// NewCube creates a unit-style cube mesh centered at the origin with the
// given edge length. Each face has its own vertices so normals stay flat.
func NewCube(size float64) *Mesh {
	mesh := NewMesh("cube")
	h := size / 2

	faces := []struct {
		normal, right, up math3d.Vec3
	}{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}

	for _, f := range faces {
		center := f.normal.Scale(h)
		right := f.right.Scale(h)
		up := f.up.Scale(h)
		appendQuad(mesh,
			center.Sub(right).Sub(up),
			center.Add(right).Sub(up),
			center.Add(right).Add(up),
			center.Sub(right).Add(up),
			f.normal)
	}

	mesh.CalculateTangents()
	mesh.CalculateBounds()
	return mesh
}

// NewPlane creates a flat rectangle on the XZ plane facing +Y, centered
// at the origin.
func NewPlane(width, depth float64) *Mesh {
	mesh := NewMesh("plane")
	hx := width / 2
	hz := depth / 2

	normal := math3d.Up()
	appendQuad(mesh,
		math3d.V3(-hx, 0, hz),
		math3d.V3(hx, 0, hz),
		math3d.V3(hx, 0, -hz),
		math3d.V3(-hx, 0, -hz),
		normal)

	mesh.CalculateTangents()
	mesh.CalculateBounds()
	return mesh
}

// NewSphere creates a UV sphere centered at the origin. Segments is the
// longitudinal resolution, rings the latitudinal. Both are clamped to a
// renderable minimum.
func NewSphere(radius float64, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	mesh := NewMesh("sphere")

	for ring := 0; ring <= rings; ring++ {
		phi := math.Pi * float64(ring) / float64(rings)
		y := math.Cos(phi)
		r := math.Sin(phi)

		for seg := 0; seg <= segments; seg++ {
			theta := 2 * math.Pi * float64(seg) / float64(segments)
			n := math3d.V3(r*math.Sin(theta), y, r*math.Cos(theta))
			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV: math3d.V2(
					float64(seg)/float64(segments),
					1-float64(ring)/float64(rings),
				),
			})
		}
	}

	stride := segments + 1
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			i0 := ring*stride + seg
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1

			mesh.Faces = append(mesh.Faces,
				Face{V: [3]int{i0, i2, i3}, Material: -1},
				Face{V: [3]int{i0, i3, i1}, Material: -1},
			)
		}
	}

	mesh.CalculateTangents()
	mesh.CalculateBounds()
	return mesh
}

// appendQuad adds a quad as two triangles. Corners are listed
// counter-clockwise viewed from the front.
func appendQuad(mesh *Mesh, p0, p1, p2, p3, normal math3d.Vec3) {
	base := len(mesh.Vertices)
	uvs := [4]math3d.Vec2{
		math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1),
	}
	for i, p := range [4]math3d.Vec3{p0, p1, p2, p3} {
		mesh.Vertices = append(mesh.Vertices, MeshVertex{
			Position: p,
			Normal:   normal,
			UV:       uvs[i],
		})
	}
	mesh.Faces = append(mesh.Faces,
		Face{V: [3]int{base, base + 1, base + 2}, Material: -1},
		Face{V: [3]int{base, base + 2, base + 3}, Material: -1},
	)
}
