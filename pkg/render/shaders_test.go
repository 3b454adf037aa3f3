package render

import (
	"math"
	"testing"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

func TestParseShaderKind(t *testing.T) {
	tests := []struct {
		name    string
		want    ShaderKind
		wantErr bool
	}{
		{"", ShaderStandard, false},
		{"standard", ShaderStandard, false},
		{"unlit", ShaderUnlit, false},
		{"sky", ShaderSky, false},
		{"depth", ShaderDepth, false},
		{"phong", ShaderStandard, true},
	}

	for _, tt := range tests {
		got, err := ParseShaderKind(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShaderKind(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseShaderKind(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if !tt.wantErr && tt.name != "" && got.String() != tt.name {
			t.Errorf("ShaderKind %v String() = %q, want %q", got, got.String(), tt.name)
		}
	}
}

func TestShaderFor(t *testing.T) {
	if _, ok := ShaderFor(ShaderStandard).(StandardShader); !ok {
		t.Errorf("ShaderFor(ShaderStandard) = %T", ShaderFor(ShaderStandard))
	}
	if _, ok := ShaderFor(ShaderUnlit).(UnlitShader); !ok {
		t.Errorf("ShaderFor(ShaderUnlit) = %T", ShaderFor(ShaderUnlit))
	}
	if _, ok := ShaderFor(ShaderSky).(SkyShader); !ok {
		t.Errorf("ShaderFor(ShaderSky) = %T", ShaderFor(ShaderSky))
	}
	if _, ok := ShaderFor(ShaderDepth).(DepthShader); !ok {
		t.Errorf("ShaderFor(ShaderDepth) = %T", ShaderFor(ShaderDepth))
	}
}

func TestStandardVertex(t *testing.T) {
	ctx := ShaderContext{
		Model:          math3d.Translate(math3d.V3(1, 2, 3)),
		ViewProjection: math3d.Identity(),
		NormalMatrix:   math3d.Identity(),
	}
	in := VertexIn{
		Position: math3d.V3(1, 1, 1),
		Normal:   math3d.V3(0, 0, 2),
		Tangent:  math3d.V3(1, 0, 0),
		UV:       math3d.V2(0.25, 0.75),
		Color:    math3d.V4(1, 0.5, 0.25, 1),
	}

	out := StandardShader{}.Vertex(&ctx, in)

	if got, want := out.WorldPos, math3d.V3(2, 3, 4); got != want {
		t.Errorf("WorldPos = %v, want %v", got, want)
	}
	if got, want := out.Position, math3d.V4(2, 3, 4, 1); got != want {
		t.Errorf("Position = %v, want %v", got, want)
	}
	if out.Depth != out.Position.W {
		t.Errorf("Depth = %g, want the projection w %g", out.Depth, out.Position.W)
	}
	if got, want := out.Normal, math3d.V3(0, 0, 1); got != want {
		t.Errorf("Normal = %v, want normalized %v", got, want)
	}
	// Directions ignore the model translation.
	if got, want := out.Tangent, math3d.V3(1, 0, 0); got != want {
		t.Errorf("Tangent = %v, want %v", got, want)
	}
	if out.UV != in.UV || out.Color != in.Color {
		t.Errorf("UV/Color not carried through: %v %v", out.UV, out.Color)
	}
}

func TestStandardAlphaCutoff(t *testing.T) {
	ctx := ShaderContext{AlphaCutoff: 0.5}
	tests := []struct {
		alpha float64
		want  bool
	}{
		{0.4, false},
		{0.5, true},
		{0.6, true},
	}
	for _, tt := range tests {
		v := VertexOut{Color: math3d.V4(1, 1, 1, tt.alpha)}
		if got := (StandardShader{}).Alpha(&ctx, v); got != tt.want {
			t.Errorf("Alpha with a=%g cutoff=0.5: got %v, want %v", tt.alpha, got, tt.want)
		}
	}
}

func TestStandardGeometryFactors(t *testing.T) {
	ctx := ShaderContext{}
	opts := DefaultOptions()
	res := &Resources{Metallic: 0.3, Roughness: 0.7}
	v := VertexOut{
		WorldPos: math3d.V3(1, 2, 3),
		Normal:   math3d.V3(0, 0, 1),
		Color:    math3d.V4(1, 0.5, 0.25, 1),
	}

	s, ok := StandardShader{}.Geometry(&ctx, res, &opts, v)
	if !ok {
		t.Fatalf("opaque sample discarded")
	}
	if got, want := s.Albedo, HDR(1, 0.5, 0.25); got != want {
		t.Errorf("Albedo = %+v, want %+v", got, want)
	}
	if s.Metallic != 0.3 || s.Roughness != 0.7 {
		t.Errorf("factors = %g/%g, want 0.3/0.7", s.Metallic, s.Roughness)
	}
	if s.Emission != (HDRColor{}) {
		t.Errorf("Emission = %+v, want none", s.Emission)
	}

	res.EmissiveStrength = 2
	s, _ = StandardShader{}.Geometry(&ctx, res, &opts, v)
	if got, want := s.Emission, HDR(2, 1, 0.5); got != want {
		t.Errorf("untextured Emission = %+v, want surface color scaled %+v", got, want)
	}
}

func TestStandardGeometryMetalRoughTexture(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, Color{R: 0, G: 128, B: 64, A: 255})

	ctx := ShaderContext{}
	opts := DefaultOptions()
	res := &Resources{Metallic: 1, Roughness: 1, MetalRough: tex}
	v := VertexOut{Normal: math3d.V3(0, 0, 1), Color: math3d.V4(1, 1, 1, 1)}

	s, ok := StandardShader{}.Geometry(&ctx, res, &opts, v)
	if !ok {
		t.Fatalf("sample discarded")
	}
	if want := 128.0 / 255; math.Abs(s.Roughness-want) > 1e-12 {
		t.Errorf("Roughness = %g, want the green channel %g", s.Roughness, want)
	}
	if want := 64.0 / 255; math.Abs(s.Metallic-want) > 1e-12 {
		t.Errorf("Metallic = %g, want the blue channel %g", s.Metallic, want)
	}
}

func TestStandardGeometryAlphaDiscard(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, Color{R: 255, G: 255, B: 255, A: 25})

	ctx := ShaderContext{AlphaCutoff: 0.5}
	opts := DefaultOptions()
	res := &Resources{Albedo: tex}
	v := VertexOut{Normal: math3d.V3(0, 0, 1), Color: math3d.V4(1, 1, 1, 1)}

	if _, ok := (StandardShader{}).Geometry(&ctx, res, &opts, v); ok {
		t.Errorf("transparent texel not discarded at cutoff 0.5")
	}
}

func TestStandardGeometryNormalMap(t *testing.T) {
	// A flat normal map texel (128,128,255) encodes straight up in
	// tangent space; the shaded normal must stay on the vertex normal.
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, Color{R: 128, G: 128, B: 255, A: 255})

	ctx := ShaderContext{}
	opts := DefaultOptions()
	res := &Resources{Roughness: 1, Normal: tex}
	v := VertexOut{
		Normal:    math3d.V3(0, 0, 1),
		Tangent:   math3d.V3(1, 0, 0),
		Bitangent: math3d.V3(0, 1, 0),
		Color:     math3d.V4(1, 1, 1, 1),
	}

	s, _ := StandardShader{}.Geometry(&ctx, res, &opts, v)
	if s.Normal.Z < 0.999 || math.Abs(s.Normal.X) > 0.01 || math.Abs(s.Normal.Y) > 0.01 {
		t.Errorf("flat normal map bent the normal to %v", s.Normal)
	}

	// Without tangents the map cannot be applied.
	v.Tangent = math3d.Vec3{}
	s, _ = StandardShader{}.Geometry(&ctx, res, &opts, v)
	if got, want := s.Normal, math3d.V3(0, 0, 1); got != want {
		t.Errorf("normal without tangent frame = %v, want untouched %v", got, want)
	}
}

// TestStandardFragmentLighting pins the directional lighting terms: a
// light square on the normal gives full diffuse, a light behind the
// surface gives only ambient.
func TestStandardFragmentLighting(t *testing.T) {
	s := GeometrySample{
		WorldPos:  math3d.V3(0, 0, 0),
		Normal:    math3d.V3(0, 0, 1),
		Albedo:    HDR(1, 1, 1),
		Roughness: 1, // widest specular lobe
	}
	ctx := ShaderContext{
		CameraPos: math3d.V3(0, 0, 5),
		Lights: []Light{{
			Kind:      LightDirectional,
			Direction: math3d.V3(0, 0, 1),
			Color:     HDR(1, 1, 1),
			Intensity: 1,
		}},
	}

	lit := StandardShader{}.Fragment(&ctx, nil, s)
	// ambient + diffuse + specular, specular at 0.04 base reflectance.
	if lit.R < 1.0 || lit.R > 1.1 {
		t.Errorf("head-on lit = %+v, want ambient+full diffuse+small specular", lit)
	}

	ctx.Lights[0].Direction = math3d.V3(0, 0, -1)
	back := StandardShader{}.Fragment(&ctx, nil, s)
	if math.Abs(back.R-0.03) > 1e-12 {
		t.Errorf("backlit = %+v, want ambient only", back)
	}
}

func TestStandardFragmentPointLightFalloff(t *testing.T) {
	s := GeometrySample{
		Normal:    math3d.V3(0, 0, 1),
		Albedo:    HDR(1, 1, 1),
		Roughness: 1,
	}
	light := Light{
		Kind:      LightPoint,
		Position:  math3d.V3(0, 0, 2),
		Color:     HDR(1, 1, 1),
		Intensity: 1,
	}
	ctx := ShaderContext{CameraPos: math3d.V3(0, 0, 5), Lights: []Light{light}}

	near := StandardShader{}.Fragment(&ctx, nil, s)

	ctx.Lights[0].Position = math3d.V3(0, 0, 4)
	farther := StandardShader{}.Fragment(&ctx, nil, s)
	if farther.R >= near.R {
		t.Errorf("no distance falloff: near %g, far %g", near.R, farther.R)
	}

	// Out of range contributes nothing beyond ambient.
	ctx.Lights[0].Range = 1
	out := StandardShader{}.Fragment(&ctx, nil, s)
	if math.Abs(out.R-0.03) > 1e-12 {
		t.Errorf("light beyond its range still contributed: %+v", out)
	}
}

func TestUnlitFragment(t *testing.T) {
	ctx := ShaderContext{Lights: []Light{{
		Kind: LightDirectional, Direction: math3d.V3(0, 0, 1),
		Color: HDR(1, 1, 1), Intensity: 10,
	}}}
	s := GeometrySample{
		Albedo:   HDR(0.25, 0.5, 0.75),
		Emission: HDR(0.125, 0, 0),
	}
	got := UnlitShader{}.Fragment(&ctx, nil, s)
	if want := HDR(0.375, 0.5, 0.75); got != want {
		t.Errorf("unlit = %+v, want albedo+emission %+v ignoring lights", got, want)
	}
}

func TestSkyVertexIgnoresModelTranslation(t *testing.T) {
	ctx := ShaderContext{
		Model:          math3d.Translate(math3d.V3(100, -50, 25)),
		ViewProjection: math3d.Identity(),
		CameraPos:      math3d.V3(3, 4, 5),
	}
	in := VertexIn{Position: math3d.V3(0, 0, -1)}

	out := SkyShader{}.Vertex(&ctx, in)
	if got, want := out.WorldPos, math3d.V3(3, 4, 4); got != want {
		t.Errorf("WorldPos = %v, want camera-centered %v", got, want)
	}
	if got, want := out.Normal, math3d.V3(0, 0, 1); got != want {
		t.Errorf("Normal = %v, want inward %v", got, want)
	}
}

func TestSkyGeometryEnvironment(t *testing.T) {
	ctx := ShaderContext{CameraPos: math3d.V3(1, 2, 3)}
	opts := DefaultOptions()
	v := VertexOut{WorldPos: math3d.V3(2, 2, 3)} // view direction +x

	s, ok := SkyShader{}.Geometry(&ctx, &Resources{}, &opts, v)
	if !ok {
		t.Fatalf("sky sample discarded")
	}
	if got, want := s.Albedo, HDR(0.4, 0.55, 0.8); got != want {
		t.Errorf("fallback sky = %+v, want horizon color %+v", got, want)
	}
	if got, want := s.Normal, math3d.V3(-1, 0, 0); got != want {
		t.Errorf("sky normal = %v, want back toward the camera %v", got, want)
	}

	// +x maps to the center of an equirectangular map.
	env := NewTexture(4, 2)
	env.SetPixel(2, 1, Color{R: 255, A: 255})
	s, _ = SkyShader{}.Geometry(&ctx, &Resources{Environment: env}, &opts, v)
	if s.Albedo.R < 0.99 || s.Albedo.G > 0.01 || s.Albedo.B > 0.01 {
		t.Errorf("environment sample = %+v, want the red center texel", s.Albedo)
	}
}

func TestDepthShaderGrayscale(t *testing.T) {
	ctx := ShaderContext{CameraPos: math3d.V3(0, 0, 0), Near: 1, Far: 101}
	tests := []struct {
		name string
		pos  math3d.Vec3
		want float64
	}{
		{"midway", math3d.V3(0, 0, -51), 0.5},
		{"inside near", math3d.V3(0, 0, -0.5), 0},
		{"beyond far", math3d.V3(0, 0, -500), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DepthShader{}.Fragment(&ctx, nil, GeometrySample{WorldPos: tt.pos})
			if math.Abs(got.R-tt.want) > 1e-12 || got.G != got.R || got.B != got.R {
				t.Errorf("depth fragment = %+v, want gray %g", got, tt.want)
			}
		})
	}
}
