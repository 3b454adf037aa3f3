package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// GLTFLoader reads glTF and GLB documents into meshes. The flags
// control attribute derivation for files that carry no normals or
// tangents; attributes present in the file always win over derived
// ones.
type GLTFLoader struct {
	CalculateNormals bool
	SmoothNormals    bool // average face normals at shared vertices
	GenerateTangents bool
}

// NewGLTFLoader creates a loader that derives whatever the file lacks.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		GenerateTangents: true,
	}
}

// LoadGLB loads a mesh from a glTF or binary glTF file with default
// options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads a glTF or GLB document into a single mesh. Geometry from
// every mesh in the document is merged; faces keep their per-primitive
// material index.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := appendPrimitives(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	// Tangent derivation runs after normal derivation so the frames are
	// orthogonalized against the normals the mesh ends up with.
	if l.CalculateNormals && !hasNormalData(mesh) {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	if l.GenerateTangents && !hasTangentData(mesh) {
		mesh.CalculateTangents()
	}

	loadMaterials(doc, path, mesh)
	mesh.CalculateBounds()
	return mesh, nil
}

// hasNormalData reports whether any vertex carries a usable normal.
// The zeroed normals left by files that omit the attribute do not
// count.
func hasNormalData(m *Mesh) bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

func hasTangentData(m *Mesh) bool {
	for _, v := range m.Vertices {
		if v.Tangent.LenSq() > 0 {
			return true
		}
	}
	return false
}

// appendPrimitives converts one glTF mesh into vertices and faces,
// appending to the output mesh. Primitives without positions and
// non-triangle primitives are skipped.
func appendPrimitives(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		// A zero mode is what an omitted mode field decodes to, and
		// the format's default is triangles.
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Attr(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Attr(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Attr(doc, idx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}
		var tangents []math3d.Vec4
		if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
			if tangents, err = readVec4Attr(doc, idx); err != nil {
				return fmt.Errorf("read tangents: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i := range positions {
			v := MeshVertex{Position: positions[i]}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image, the sampler
				// at the bottom.
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			if i < len(tangents) {
				t := tangents[i]
				v.Tangent = math3d.V3(t.X, t.Y, t.Z)
				// W is the handedness sign for the bitangent.
				v.Bitangent = v.Normal.Cross(v.Tangent).Scale(t.W)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		matIdx := -1
		if prim.Material != nil {
			matIdx = *prim.Material
		}

		// Faces keep glTF's counter-clockwise winding, which is also
		// the renderer's front-face order.
		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{base + indices[i], base + indices[i+1], base + indices[i+2]},
					Material: matIdx,
				})
			}
		} else {
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{base + i, base + i + 1, base + i + 2},
					Material: matIdx,
				})
			}
		}
	}

	return nil
}

func readVec3Attr(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	a := doc.Accessors[idx]
	if a.Type != gltf.AccessorVec3 || a.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", a.Type, a.ComponentType)
	}
	f, err := readFloats(doc, a, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, len(f)/3)
	for i := range out {
		out[i] = math3d.V3(f[3*i], f[3*i+1], f[3*i+2])
	}
	return out, nil
}

func readVec2Attr(doc *gltf.Document, idx int) ([]math3d.Vec2, error) {
	a := doc.Accessors[idx]
	if a.Type != gltf.AccessorVec2 || a.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC2, got %v/%v", a.Type, a.ComponentType)
	}
	f, err := readFloats(doc, a, 2)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, len(f)/2)
	for i := range out {
		out[i] = math3d.V2(f[2*i], f[2*i+1])
	}
	return out, nil
}

func readVec4Attr(doc *gltf.Document, idx int) ([]math3d.Vec4, error) {
	a := doc.Accessors[idx]
	if a.Type != gltf.AccessorVec4 || a.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC4, got %v/%v", a.Type, a.ComponentType)
	}
	f, err := readFloats(doc, a, 4)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec4, len(f)/4)
	for i := range out {
		out[i] = math3d.V4(f[4*i], f[4*i+1], f[4*i+2], f[4*i+3])
	}
	return out, nil
}

// readIndices decodes an index accessor, widening every supported
// component type to int.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	a := doc.Accessors[idx]
	if a.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", a.Type)
	}

	var size int
	switch a.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %v", a.ComponentType)
	}
	data, stride, err := accessorBytes(doc, a, size)
	if err != nil {
		return nil, err
	}

	out := make([]int, a.Count)
	for i := range out {
		p := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(p[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(p))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(p))
		}
	}
	return out, nil
}

// readFloats decodes a float accessor into a flat component list,
// widening to float64.
func readFloats(doc *gltf.Document, a *gltf.Accessor, comps int) ([]float64, error) {
	data, stride, err := accessorBytes(doc, a, comps*4)
	if err != nil {
		return nil, err
	}
	out := make([]float64, a.Count*comps)
	for i := range a.Count {
		p := data[i*stride:]
		for j := range comps {
			out[i*comps+j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(p[j*4:])))
		}
	}
	return out, nil
}

// accessorBytes resolves an accessor to its backing bytes and element
// stride. A zero byte stride means the elements are tightly packed.
// Only buffers embedded in the document are supported.
func accessorBytes(doc *gltf.Document, a *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if a.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	view := doc.BufferViews[*a.BufferView]
	buf := doc.Buffers[view.Buffer]
	if buf.URI != "" {
		return nil, 0, fmt.Errorf("external buffers not supported")
	}
	if buf.Data == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return buf.Data[view.ByteOffset+a.ByteOffset:], stride, nil
}

// loadMaterials converts glTF materials, decoding any referenced
// textures. Decode failures leave the corresponding map nil.
func loadMaterials(doc *gltf.Document, path string, mesh *Mesh) {
	for _, gm := range doc.Materials {
		mat := Material{
			Name:      gm.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Metallic:  1,
			Roughness: 1,
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				f := *pbr.BaseColorFactor
				mat.BaseColor = [4]float64{
					float64(f[0]), float64(f[1]), float64(f[2]), float64(f[3]),
				}
			}
			if pbr.MetallicFactor != nil {
				mat.Metallic = float64(*pbr.MetallicFactor)
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = float64(*pbr.RoughnessFactor)
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseMap = textureImage(doc, path, pbr.BaseColorTexture.Index)
				mat.HasTexture = mat.BaseMap != nil
			}
			if pbr.MetallicRoughnessTexture != nil {
				mat.MetalRoughMap = textureImage(doc, path, pbr.MetallicRoughnessTexture.Index)
			}
		}
		if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
			mat.NormalMap = textureImage(doc, path, *nt.Index)
		}
		for i := range gm.EmissiveFactor {
			mat.EmissiveFactor[i] = float64(gm.EmissiveFactor[i])
		}
		if gm.EmissiveTexture != nil {
			mat.EmissiveMap = textureImage(doc, path, gm.EmissiveTexture.Index)
		}
		mesh.Materials = append(mesh.Materials, mat)
	}
}

// textureImage resolves a texture index to a decoded image, or nil.
func textureImage(doc *gltf.Document, path string, texIdx int) image.Image {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil {
		return nil
	}
	data := imageBytes(doc, path, *tex.Source)
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// imageBytes returns the raw bytes of image imgIdx, either from the
// binary buffer or an external file next to the document.
func imageBytes(doc *gltf.Document, path string, imgIdx int) []byte {
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		return nil
	}
	img := doc.Images[imgIdx]
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data != nil {
			start := bv.ByteOffset
			return buf.Data[start : start+bv.ByteLength]
		}
		return nil
	}
	if img.URI != "" {
		data, err := os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
		if err == nil {
			return data
		}
	}
	return nil
}
