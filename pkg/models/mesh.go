// Package models provides 3D model loading and representation for charcoal.
package models

import (
	"image"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// Mesh is indexed triangle geometry with optional materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounds of the vertex data, kept current by CalculateBounds.
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position  math3d.Vec3
	Normal    math3d.Vec3
	Tangent   math3d.Vec3
	Bitangent math3d.Vec3
	UV        math3d.Vec2
}

// Face is one triangle: three indices into Vertices and a material
// index into Materials, -1 when the face has no material.
type Face struct {
	V        [3]int
	Material int
}

// Material is a PBR material, populated by the glTF loader. Factors
// are in linear space; the maps are optional.
type Material struct {
	Name           string
	BaseColor      [4]float64 // RGBA, 0 to 1
	Metallic       float64    // 0 dielectric, 1 metal
	Roughness      float64    // 0 smooth, 1 rough
	EmissiveFactor [3]float64

	BaseMap       image.Image
	NormalMap     image.Image
	MetalRoughMap image.Image
	EmissiveMap   image.Image
	HasTexture    bool
}

// NewMesh creates an empty named mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds recomputes the axis-aligned bounding box from the
// vertex positions.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals gives every face a flat plane normal. A vertex
// shared between faces ends up with the normal of the last face that
// touches it, so flat shading wants unshared vertices.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals averages face normals around each shared
// vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		// Unnormalized, so face area weights the average.
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		m.Vertices[f.V[0]].Normal = m.Vertices[f.V[0]].Normal.Add(normal)
		m.Vertices[f.V[1]].Normal = m.Vertices[f.V[1]].Normal.Add(normal)
		m.Vertices[f.V[2]].Normal = m.Vertices[f.V[2]].Normal.Add(normal)
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CalculateTangents computes per-vertex tangent frames from UV gradients.
// Tangents are accumulated over shared faces and orthogonalized against
// the vertex normal. Faces with degenerate UVs contribute nothing.
func (m *Mesh) CalculateTangents() {
	tan := make([]math3d.Vec3, len(m.Vertices))
	bitan := make([]math3d.Vec3, len(m.Vertices))

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]]
		v1 := m.Vertices[f.V[1]]
		v2 := m.Vertices[f.V[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1 := v1.UV.X - v0.UV.X
		dv1 := v1.UV.Y - v0.UV.Y
		du2 := v2.UV.X - v0.UV.X
		dv2 := v2.UV.Y - v0.UV.Y

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det
		t := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))
		b := e2.Scale(du1 * r).Sub(e1.Scale(du2 * r))

		for _, idx := range f.V {
			tan[idx] = tan[idx].Add(t)
			bitan[idx] = bitan[idx].Add(b)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := tan[i].Sub(n.Scale(n.Dot(tan[i])))
		if t.LenSq() == 0 {
			continue
		}
		t = t.Normalize()
		b := n.Cross(t)
		if b.Dot(bitan[i]) < 0 {
			b = b.Negate()
		}
		m.Vertices[i].Tangent = t
		m.Vertices[i].Bitangent = b
	}
}

// Transform bakes mat into the vertex data and refreshes the bounds.
// Directions go through the linear part only; a non-uniform scale
// skews baked normals, which the pipeline's normal matrix corrects at
// render time.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
		m.Vertices[i].Tangent = mat.MulVec3Dir(m.Vertices[i].Tangent).Normalize()
		m.Vertices[i].Bitangent = mat.MulVec3Dir(m.Vertices[i].Bitangent).Normalize()
	}
	m.CalculateBounds()
}

// Clone returns a deep copy sharing no slices with m.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetTangent returns the tangent frame for vertex i.
// Implements render.TangentMeshRenderer.
func (m *Mesh) GetTangent(i int) (tangent, bitangent math3d.Vec3) {
	v := m.Vertices[i]
	return v.Tangent, v.Bitangent
}

// GetFaceMaterial returns the material index for face i, -1 when the
// face has none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i, or nil when i is out of
// range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
