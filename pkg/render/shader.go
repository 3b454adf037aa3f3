package render

import (
	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// VertexIn is the input to the vertex stage: one object-space vertex
// dereferenced from the mesh's shared attribute arrays. Color is the draw
// call's base color in linear space. Immutable per draw call.
type VertexIn struct {
	Position  math3d.Vec3
	Normal    math3d.Vec3
	Tangent   math3d.Vec3
	Bitangent math3d.Vec3
	UV        math3d.Vec2
	Color     math3d.Vec4
}

// VertexOut is the output of the vertex stage. Position is in homogeneous
// projection space until PerspectiveDivide rescales every field by 1/w and
// stores 1/w back into Position.W; the viewport transform then overwrites
// Position.X/Y with pixel coordinates. Depth is a scratch slot holding the
// view-space distance, set by vertex shaders from the projection w.
type VertexOut struct {
	Position  math3d.Vec4
	WorldPos  math3d.Vec3
	Normal    math3d.Vec3
	Tangent   math3d.Vec3
	Bitangent math3d.Vec3
	UV        math3d.Vec2
	Color     math3d.Vec4
	Depth     float64
}

// Add returns the field-wise sum of two vertices.
func (v VertexOut) Add(o VertexOut) VertexOut {
	return VertexOut{
		Position:  v.Position.Add(o.Position),
		WorldPos:  v.WorldPos.Add(o.WorldPos),
		Normal:    v.Normal.Add(o.Normal),
		Tangent:   v.Tangent.Add(o.Tangent),
		Bitangent: v.Bitangent.Add(o.Bitangent),
		UV:        v.UV.Add(o.UV),
		Color:     v.Color.Add(o.Color),
		Depth:     v.Depth + o.Depth,
	}
}

// Sub returns the field-wise difference of two vertices.
func (v VertexOut) Sub(o VertexOut) VertexOut {
	return VertexOut{
		Position:  v.Position.Sub(o.Position),
		WorldPos:  v.WorldPos.Sub(o.WorldPos),
		Normal:    v.Normal.Sub(o.Normal),
		Tangent:   v.Tangent.Sub(o.Tangent),
		Bitangent: v.Bitangent.Sub(o.Bitangent),
		UV:        v.UV.Sub(o.UV),
		Color:     v.Color.Sub(o.Color),
		Depth:     v.Depth - o.Depth,
	}
}

// Scale returns the vertex with every field multiplied by s.
func (v VertexOut) Scale(s float64) VertexOut {
	return VertexOut{
		Position:  v.Position.Scale(s),
		WorldPos:  v.WorldPos.Scale(s),
		Normal:    v.Normal.Scale(s),
		Tangent:   v.Tangent.Scale(s),
		Bitangent: v.Bitangent.Scale(s),
		UV:        v.UV.Scale(s),
		Color:     v.Color.Scale(s),
		Depth:     v.Depth * s,
	}
}

// Lerp linearly interpolates every field between v and o by t.
func (v VertexOut) Lerp(o VertexOut, t float64) VertexOut {
	return v.Add(o.Sub(v).Scale(t))
}

// PerspectiveDivide maps the vertex from projection space to normalized
// device space: every field is scaled by 1/w and Position.W is replaced
// with 1/w so that plain screen-space interpolation of the result stays
// perspective-correct. True attribute values are restored per pixel by
// scaling with w = 1/Position.W.
func (v VertexOut) PerspectiveDivide() VertexOut {
	invW := 1.0 / v.Position.W
	out := v.Scale(invW)
	out.Position.W = invW
	return out
}

// Triangle groups three vertex-stage outputs. Transient, rebuilt per face,
// never persisted across draw calls.
type Triangle struct {
	V [3]VertexOut
}

// GeometrySample is the fragment-stage payload produced by the geometry
// shader: the surface attributes one pixel needs for lighting. Written
// marks G-buffer occupancy for the current frame.
type GeometrySample struct {
	WorldPos  math3d.Vec3
	Normal    math3d.Vec3
	Tangent   math3d.Vec3
	Albedo    HDRColor
	Metallic  float64
	Roughness float64
	Emission  HDRColor
	Written   bool
}

// LightKind selects how a light illuminates the scene.
type LightKind int

const (
	// LightDirectional lights every surface from a fixed direction.
	LightDirectional LightKind = iota
	// LightPoint radiates from a position with distance falloff.
	LightPoint
)

// Light is one active light for the frame. Direction points from the
// surface toward the light and is used by directional lights; Position
// and Range apply to point lights.
type Light struct {
	Kind      LightKind
	Direction math3d.Vec3
	Position  math3d.Vec3
	Color     HDRColor
	Intensity float64
	Range     float64
}

// ShaderContext carries the per-frame uniform state shared by every shader
// stage: camera transforms, clip planes, active lights. Model and
// NormalMatrix are refreshed per draw call by the pipeline.
type ShaderContext struct {
	Model          math3d.Mat4
	View           math3d.Mat4
	Projection     math3d.Mat4
	ViewProjection math3d.Mat4
	NormalMatrix   math3d.Mat4
	CameraPos      math3d.Vec3
	Near           float64
	Far            float64
	Time           float64
	Lights         []Light
	AlphaCutoff    float64
}

// Resources holds the per-draw material inputs sampled by shaders.
// Nil textures fall back to the scalar factors.
type Resources struct {
	Albedo      *Texture
	Normal      *Texture
	MetalRough  *Texture
	Emissive    *Texture
	Environment *Texture

	BaseColor        [4]float64
	Metallic         float64
	Roughness        float64
	EmissiveStrength float64
}

// Shader is the pluggable four-stage shading program invoked by the
// pipeline. Vertex maps one object-space vertex to projection space.
// Alpha runs after the depth test and may discard the pixel. Geometry
// turns the perspective-restored vertex into a surface sample (false
// discards). Fragment lights a sample into linear HDR, either immediately
// (forward) or during deferred composition.
type Shader interface {
	Vertex(ctx *ShaderContext, in VertexIn) VertexOut
	Alpha(ctx *ShaderContext, v VertexOut) bool
	Geometry(ctx *ShaderContext, res *Resources, opts *Options, v VertexOut) (GeometrySample, bool)
	Fragment(ctx *ShaderContext, res *Resources, s GeometrySample) HDRColor
}
