package render

import (
	"fmt"
	"math"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// ShaderKind selects one of the built-in shader variants.
type ShaderKind int

const (
	// ShaderStandard is the lit, normal-mapped default material.
	ShaderStandard ShaderKind = iota
	// ShaderUnlit outputs albedo and emission with no lighting.
	ShaderUnlit
	// ShaderSky samples an equirectangular environment by view direction.
	ShaderSky
	// ShaderDepth visualizes camera distance as grayscale.
	ShaderDepth
)

// String returns the shader kind name.
func (k ShaderKind) String() string {
	switch k {
	case ShaderUnlit:
		return "unlit"
	case ShaderSky:
		return "sky"
	case ShaderDepth:
		return "depth"
	default:
		return "standard"
	}
}

// ParseShaderKind maps a configuration name to a shader kind.
func ParseShaderKind(name string) (ShaderKind, error) {
	switch name {
	case "", "standard":
		return ShaderStandard, nil
	case "unlit":
		return ShaderUnlit, nil
	case "sky":
		return ShaderSky, nil
	case "depth":
		return ShaderDepth, nil
	}
	return ShaderStandard, fmt.Errorf("unknown shader kind %q", name)
}

// ShaderFor returns the shader implementation for a kind.
func ShaderFor(kind ShaderKind) Shader {
	switch kind {
	case ShaderUnlit:
		return UnlitShader{}
	case ShaderSky:
		return SkyShader{}
	case ShaderDepth:
		return DepthShader{}
	default:
		return StandardShader{}
	}
}

// StandardShader is the default lit material: model-to-clip vertex
// transform, cutoff alpha test, textured and normal-mapped geometry
// samples, Lambert diffuse with Blinn-Phong specular over the frame's
// lights.
type StandardShader struct{}

// Vertex transforms one vertex from object space to projection space and
// carries world-space shading attributes along.
func (StandardShader) Vertex(ctx *ShaderContext, in VertexIn) VertexOut {
	world := ctx.Model.MulVec3(in.Position)
	out := VertexOut{
		Position:  ctx.ViewProjection.MulVec4(math3d.V4FromV3(world, 1)),
		WorldPos:  world,
		Normal:    ctx.NormalMatrix.MulVec3Dir(in.Normal).Normalize(),
		Tangent:   ctx.Model.MulVec3Dir(in.Tangent),
		Bitangent: ctx.Model.MulVec3Dir(in.Bitangent),
		UV:        in.UV,
		Color:     in.Color,
	}
	// The projection w component is the view-space distance; stash it
	// for the depth test.
	out.Depth = out.Position.W
	return out
}

// Alpha keeps the pixel when the interpolated vertex alpha clears the
// cutoff.
func (StandardShader) Alpha(ctx *ShaderContext, v VertexOut) bool {
	return v.Color.W >= ctx.AlphaCutoff
}

// Geometry builds the surface sample: albedo from base color and texture,
// tangent-space normal mapping, metallic and roughness factors, emission.
// Returns false when the combined alpha falls under the cutoff.
func (StandardShader) Geometry(ctx *ShaderContext, res *Resources, opts *Options, v VertexOut) (GeometrySample, bool) {
	r, g, b, a := v.Color.X, v.Color.Y, v.Color.Z, v.Color.W
	if res.Albedo != nil {
		tr, tg, tb, ta := res.Albedo.SampleLinear(v.UV.X, v.UV.Y)
		r, g, b, a = r*tr, g*tg, b*tb, a*ta
	}
	if a < ctx.AlphaCutoff {
		return GeometrySample{}, false
	}

	normal := v.Normal.Normalize()
	tangent := v.Tangent
	if res.Normal != nil && tangent.LenSq() > 0 {
		nx, ny, nz, _ := res.Normal.SampleData(v.UV.X, v.UV.Y)
		tn := math3d.V3(nx*2-1, ny*2-1, nz*2-1)
		t := tangent.Normalize()
		bt := v.Bitangent.Normalize()
		normal = t.Scale(tn.X).Add(bt.Scale(tn.Y)).Add(normal.Scale(tn.Z)).Normalize()
	}

	metallic := res.Metallic
	roughness := res.Roughness
	if res.MetalRough != nil {
		// glTF packs roughness in G and metallic in B.
		_, mg, mb, _ := res.MetalRough.SampleData(v.UV.X, v.UV.Y)
		roughness *= mg
		metallic *= mb
	}

	var emission HDRColor
	if res.Emissive != nil {
		er, eg, eb, _ := res.Emissive.SampleLinear(v.UV.X, v.UV.Y)
		emission = HDR(er, eg, eb).Scale(res.EmissiveStrength)
	} else if res.EmissiveStrength > 0 {
		// Untextured emitters glow in their own surface color.
		emission = HDR(r, g, b).Scale(res.EmissiveStrength)
	}

	return GeometrySample{
		WorldPos:  v.WorldPos,
		Normal:    normal,
		Tangent:   tangent,
		Albedo:    HDR(r, g, b),
		Metallic:  metallic,
		Roughness: roughness,
		Emission:  emission,
	}, true
}

// Fragment lights the sample with Lambert diffuse and Blinn-Phong
// specular over the active lights, plus a small ambient term and the
// sample's emission.
func (StandardShader) Fragment(ctx *ShaderContext, res *Resources, s GeometrySample) HDRColor {
	const ambient = 0.03
	n := s.Normal
	view := ctx.CameraPos.Sub(s.WorldPos).Normalize()
	out := s.Albedo.Scale(ambient)

	for i := range ctx.Lights {
		l := &ctx.Lights[i]
		var dir math3d.Vec3
		atten := 1.0
		switch l.Kind {
		case LightPoint:
			toLight := l.Position.Sub(s.WorldPos)
			dist := toLight.Len()
			if dist == 0 || (l.Range > 0 && dist > l.Range) {
				continue
			}
			dir = toLight.Scale(1 / dist)
			atten = 1 / (1 + dist*dist)
		default:
			dir = l.Direction.Normalize()
		}

		ndotl := n.Dot(dir)
		if ndotl <= 0 {
			continue
		}
		half := dir.Add(view).Normalize()
		shininess := 2 + (1-s.Roughness)*(1-s.Roughness)*254
		spec := math.Pow(math.Max(0, n.Dot(half)), shininess) * (0.04 + 0.96*s.Metallic)
		diffuse := s.Albedo.Scale(ndotl * (1 - s.Metallic))
		contrib := l.Color.Scale(l.Intensity * atten)
		out = out.Add(contrib.Mul(diffuse.Add(HDR(spec, spec, spec))))
	}
	return out.Add(s.Emission)
}

// UnlitShader shares the standard vertex and geometry stages but skips
// lighting entirely.
type UnlitShader struct {
	StandardShader
}

// Fragment returns the surface color unmodified.
func (UnlitShader) Fragment(ctx *ShaderContext, res *Resources, s GeometrySample) HDRColor {
	return s.Albedo.Add(s.Emission)
}

// SkyShader renders an environment backdrop. Vertices follow the camera
// so the sky never parallaxes, and the color comes from an
// equirectangular environment map indexed by view direction.
type SkyShader struct {
	StandardShader
}

// Vertex centers the sky geometry on the camera, ignoring the model
// translation, so the backdrop stays at infinity.
func (SkyShader) Vertex(ctx *ShaderContext, in VertexIn) VertexOut {
	world := ctx.Model.MulVec3Dir(in.Position).Add(ctx.CameraPos)
	out := VertexOut{
		Position: ctx.ViewProjection.MulVec4(math3d.V4FromV3(world, 1)),
		WorldPos: world,
		Normal:   in.Position.Normalize().Negate(),
		UV:       in.UV,
		Color:    in.Color,
	}
	out.Depth = out.Position.W
	return out
}

// Geometry maps the view direction onto the equirectangular environment:
// u from the horizontal angle, v from the elevation.
func (SkyShader) Geometry(ctx *ShaderContext, res *Resources, opts *Options, v VertexOut) (GeometrySample, bool) {
	dir := v.WorldPos.Sub(ctx.CameraPos).Normalize()
	c := HDR(0.4, 0.55, 0.8) // horizon fallback when no environment is bound
	if res.Environment != nil {
		u := 0.5 + math.Atan2(dir.Z, dir.X)/(2*math.Pi)
		vv := 0.5 - math.Asin(math.Max(-1, math.Min(1, dir.Y)))/math.Pi
		er, eg, eb, _ := res.Environment.SampleLinear(u, vv)
		c = HDR(er, eg, eb)
	}
	return GeometrySample{
		WorldPos:  v.WorldPos,
		Normal:    dir.Negate(),
		Albedo:    c,
		Roughness: 1,
	}, true
}

// Fragment passes the environment color through.
func (SkyShader) Fragment(ctx *ShaderContext, res *Resources, s GeometrySample) HDRColor {
	return s.Albedo
}

// DepthShader visualizes each sample's camera distance remapped over the
// near/far range, shadow-map style.
type DepthShader struct {
	StandardShader
}

// Geometry skips texturing; only position and normal are needed.
func (DepthShader) Geometry(ctx *ShaderContext, res *Resources, opts *Options, v VertexOut) (GeometrySample, bool) {
	return GeometrySample{
		WorldPos:  v.WorldPos,
		Normal:    v.Normal.Normalize(),
		Albedo:    HDR(1, 1, 1),
		Roughness: 1,
	}, true
}

// Fragment encodes camera distance as grayscale: black at the near
// plane, white at the far plane.
func (DepthShader) Fragment(ctx *ShaderContext, res *Resources, s GeometrySample) HDRColor {
	dist := ctx.CameraPos.Sub(s.WorldPos).Len()
	g := (dist - ctx.Near) / (ctx.Far - ctx.Near)
	g = math.Max(0, math.Min(1, g))
	return HDR(g, g, g)
}
