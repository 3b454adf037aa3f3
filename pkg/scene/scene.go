// Package scene loads YAML scene descriptions into renderable form:
// meshes, materials, camera, lights, and pipeline options.
package scene

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/charcoal3d/charcoal/pkg/math3d"
	"github.com/charcoal3d/charcoal/pkg/models"
	"github.com/charcoal3d/charcoal/pkg/render"
)

var (
	// ErrNoGeometry is returned for objects with neither a model path
	// nor a primitive.
	ErrNoGeometry = errors.New("object has no model or primitive")
	// ErrUnknownPrimitive is returned for unrecognized primitive names.
	ErrUnknownPrimitive = errors.New("unknown primitive")
	// ErrNoObjects is returned for scenes without any objects.
	ErrNoObjects = errors.New("scene has no objects")
)

// Scene is a fully loaded scene ready for rendering.
type Scene struct {
	Name        string
	Camera      *render.Camera
	Options     render.Options
	Lights      []render.Light
	Environment *render.Texture
	Objects     []Object
}

// Object pairs a mesh with its transform, shader, and material bindings.
type Object struct {
	Name      string
	Mesh      *models.Mesh
	Transform math3d.Mat4
	Shader    render.Shader
	Resources *render.Resources

	// Spin is the turntable rate in radians per second around Y,
	// applied on top of Transform by animating front-ends.
	Spin float64
}

// File is the YAML scene description.
type File struct {
	Name        string         `yaml:"name"`
	Camera      CameraConfig   `yaml:"camera"`
	Options     OptionsConfig  `yaml:"options"`
	Lights      []LightConfig  `yaml:"lights"`
	Environment string         `yaml:"environment"`
	Objects     []ObjectConfig `yaml:"objects"`
}

// CameraConfig describes the camera. FOV is in degrees.
type CameraConfig struct {
	Position []float64 `yaml:"position"`
	LookAt   []float64 `yaml:"look_at"`
	FOV      float64   `yaml:"fov"`
	Near     float64   `yaml:"near"`
	Far      float64   `yaml:"far"`
}

// OptionsConfig overrides pipeline options. Absent fields keep their
// defaults, which is why the booleans are pointers.
type OptionsConfig struct {
	Wireframe     *bool    `yaml:"wireframe"`
	Rasterization *bool    `yaml:"rasterization"`
	Lighting      *bool    `yaml:"lighting"`
	Deferred      *bool    `yaml:"deferred"`
	Bloom         *bool    `yaml:"bloom"`
	SSAO          *bool    `yaml:"ssao"`
	ToneMapping   *bool    `yaml:"tone_mapping"`
	Cull          string   `yaml:"cull"`
	Winding       string   `yaml:"winding"`
	BloomRadius   *int     `yaml:"bloom_radius"`
	Exposure      *float64 `yaml:"exposure"`
}

// LightConfig describes one light. Direction is the direction the light
// shines, not the surface-to-light vector.
type LightConfig struct {
	Kind      string    `yaml:"kind"`
	Direction []float64 `yaml:"direction"`
	Position  []float64 `yaml:"position"`
	Color     []float64 `yaml:"color"`
	Intensity float64   `yaml:"intensity"`
	Range     float64   `yaml:"range"`
}

// ObjectConfig describes one object: either a model path or a primitive
// with size parameters. Rotation is Euler angles in degrees, spin is
// degrees per second.
type ObjectConfig struct {
	Name      string          `yaml:"name"`
	Model     string          `yaml:"model"`
	Primitive string          `yaml:"primitive"`
	Size      []float64       `yaml:"size"`
	Segments  int             `yaml:"segments"`
	Rings     int             `yaml:"rings"`
	Shader    string          `yaml:"shader"`
	Position  []float64       `yaml:"position"`
	Rotation  []float64       `yaml:"rotation"`
	Scale     []float64       `yaml:"scale"`
	Spin      float64         `yaml:"spin"`
	Material  *MaterialConfig `yaml:"material"`
}

// MaterialConfig overrides or supplies the object's material. Maps name
// image files relative to the scene file, or procedural "checker:" and
// "gradient:" specs.
type MaterialConfig struct {
	BaseColor     []float64 `yaml:"base_color"`
	Metallic      *float64  `yaml:"metallic"`
	Roughness     *float64  `yaml:"roughness"`
	Emissive      *float64  `yaml:"emissive"`
	AlbedoMap     string    `yaml:"albedo_map"`
	NormalMap     string    `yaml:"normal_map"`
	MetalRoughMap string    `yaml:"metal_rough_map"`
	EmissiveMap   string    `yaml:"emissive_map"`
}

// Load reads and builds a scene from a YAML file. Relative asset paths
// resolve against the file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	return Build(&file, filepath.Dir(path))
}

// Build turns a parsed scene file into a renderable scene. Asset paths
// resolve against dir.
func Build(file *File, dir string) (*Scene, error) {
	if len(file.Objects) == 0 {
		return nil, ErrNoObjects
	}

	s := &Scene{Name: file.Name}

	cam, err := buildCamera(&file.Camera)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	s.Camera = cam

	opts, err := buildOptions(&file.Options)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	s.Options = opts

	for i := range file.Lights {
		light, err := buildLight(&file.Lights[i])
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.Lights = append(s.Lights, light)
	}

	if file.Environment != "" {
		tex, err := render.LoadTexture(assetPath(dir, file.Environment))
		if err != nil {
			return nil, fmt.Errorf("environment: %w", err)
		}
		tex.FilterMode = render.FilterBilinear
		s.Environment = tex
	}

	meshes := make(map[string]*models.Mesh)
	for i := range file.Objects {
		obj, err := buildObject(&file.Objects[i], dir, s.Environment, meshes)
		if err != nil {
			name := file.Objects[i].Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("object %s: %w", name, err)
		}
		s.Objects = append(s.Objects, obj)
	}

	return s, nil
}

func buildCamera(cfg *CameraConfig) (*render.Camera, error) {
	cam := render.NewCamera()

	if len(cfg.Position) > 0 {
		pos, err := vec3(cfg.Position)
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		cam.SetPosition(pos)
	}

	if cfg.FOV != 0 {
		cam.SetFOV(cfg.FOV * math.Pi / 180)
	}

	near, far := cfg.Near, cfg.Far
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 100
	}
	if near <= 0 || far <= near {
		return nil, fmt.Errorf("invalid clip planes near=%g far=%g", near, far)
	}
	cam.SetClipPlanes(near, far)

	if len(cfg.LookAt) > 0 {
		target, err := vec3(cfg.LookAt)
		if err != nil {
			return nil, fmt.Errorf("look_at: %w", err)
		}
		cam.LookAt(target)
	}

	return cam, nil
}

func buildOptions(cfg *OptionsConfig) (render.Options, error) {
	opts := render.DefaultOptions()

	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&opts.Wireframe, cfg.Wireframe)
	setBool(&opts.Rasterization, cfg.Rasterization)
	setBool(&opts.Lighting, cfg.Lighting)
	setBool(&opts.DeferredLighting, cfg.Deferred)
	setBool(&opts.Bloom, cfg.Bloom)
	setBool(&opts.SSAO, cfg.SSAO)
	setBool(&opts.ToneMapping, cfg.ToneMapping)

	cull, err := render.ParseCullMode(cfg.Cull)
	if err != nil {
		return opts, err
	}
	opts.Cull = cull

	winding, err := render.ParseWinding(cfg.Winding)
	if err != nil {
		return opts, err
	}
	opts.Winding = winding

	if cfg.BloomRadius != nil {
		opts.BloomRadius = *cfg.BloomRadius
	}
	if cfg.Exposure != nil {
		opts.Exposure = *cfg.Exposure
	}

	return opts, nil
}

func buildLight(cfg *LightConfig) (render.Light, error) {
	var light render.Light

	color := render.HDR(1, 1, 1)
	if len(cfg.Color) > 0 {
		c, err := vec3(cfg.Color)
		if err != nil {
			return light, fmt.Errorf("color: %w", err)
		}
		color = render.HDR(c.X, c.Y, c.Z)
	}
	light.Color = color

	light.Intensity = cfg.Intensity
	if light.Intensity == 0 {
		light.Intensity = 1
	}

	switch cfg.Kind {
	case "", "directional":
		light.Kind = render.LightDirectional
		dir := math3d.V3(0, -1, 0)
		if len(cfg.Direction) > 0 {
			d, err := vec3(cfg.Direction)
			if err != nil {
				return light, fmt.Errorf("direction: %w", err)
			}
			dir = d
		}
		// Shading wants the surface-to-light vector.
		light.Direction = dir.Normalize().Negate()
	case "point":
		light.Kind = render.LightPoint
		pos, err := vec3(cfg.Position)
		if err != nil {
			return light, fmt.Errorf("position: %w", err)
		}
		light.Position = pos
		light.Range = cfg.Range
	default:
		return light, fmt.Errorf("unknown light kind %q", cfg.Kind)
	}

	return light, nil
}

func buildObject(cfg *ObjectConfig, dir string, env *render.Texture, meshes map[string]*models.Mesh) (Object, error) {
	obj := Object{Name: cfg.Name}

	mesh, err := buildMesh(cfg, dir, meshes)
	if err != nil {
		return obj, err
	}
	obj.Mesh = mesh

	kind, err := render.ParseShaderKind(cfg.Shader)
	if err != nil {
		return obj, err
	}
	obj.Shader = render.ShaderFor(kind)

	transform, err := buildTransform(cfg)
	if err != nil {
		return obj, err
	}
	obj.Transform = transform
	obj.Spin = cfg.Spin * math.Pi / 180

	res, err := buildResources(cfg, mesh, dir)
	if err != nil {
		return obj, err
	}
	res.Environment = env
	obj.Resources = res

	return obj, nil
}

func buildMesh(cfg *ObjectConfig, dir string, meshes map[string]*models.Mesh) (*models.Mesh, error) {
	if cfg.Model != "" {
		// Repeated model paths parse once; later objects get a copy
		// of the first load.
		path := assetPath(dir, cfg.Model)
		if cached, ok := meshes[path]; ok {
			return cached.Clone(), nil
		}
		mesh, err := models.LoadGLB(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		meshes[path] = mesh
		return mesh, nil
	}

	size := func(i int, def float64) float64 {
		if i < len(cfg.Size) && cfg.Size[i] > 0 {
			return cfg.Size[i]
		}
		return def
	}

	switch cfg.Primitive {
	case "cube":
		return models.NewCube(size(0, 1)), nil
	case "plane":
		return models.NewPlane(size(0, 1), size(1, size(0, 1))), nil
	case "sphere":
		segments, rings := cfg.Segments, cfg.Rings
		if segments == 0 {
			segments = 32
		}
		if rings == 0 {
			rings = 16
		}
		return models.NewSphere(size(0, 1), segments, rings), nil
	case "":
		return nil, ErrNoGeometry
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, cfg.Primitive)
}

func buildTransform(cfg *ObjectConfig) (math3d.Mat4, error) {
	transform := math3d.Identity()

	if len(cfg.Scale) > 0 {
		var sv math3d.Vec3
		if len(cfg.Scale) == 1 {
			sv = math3d.V3(cfg.Scale[0], cfg.Scale[0], cfg.Scale[0])
		} else {
			v, err := vec3(cfg.Scale)
			if err != nil {
				return transform, fmt.Errorf("scale: %w", err)
			}
			sv = v
		}
		transform = math3d.Scale(sv)
	}

	if len(cfg.Rotation) > 0 {
		r, err := vec3(cfg.Rotation)
		if err != nil {
			return transform, fmt.Errorf("rotation: %w", err)
		}
		const degToRad = math.Pi / 180
		rot := math3d.RotateY(r.Y * degToRad).
			Mul(math3d.RotateX(r.X * degToRad)).
			Mul(math3d.RotateZ(r.Z * degToRad))
		transform = rot.Mul(transform)
	}

	if len(cfg.Position) > 0 {
		p, err := vec3(cfg.Position)
		if err != nil {
			return transform, fmt.Errorf("position: %w", err)
		}
		transform = math3d.Translate(p).Mul(transform)
	}

	return transform, nil
}

// ResourcesFor builds render resources from the mesh material covering
// the most faces, or neutral defaults when the mesh has none. The
// pipeline binds one material per draw, so a multi-material mesh
// renders entirely with its dominant one.
func ResourcesFor(mesh *models.Mesh) *render.Resources {
	res := &render.Resources{
		BaseColor: [4]float64{1, 1, 1, 1},
		Roughness: 0.8,
	}
	if mat := mesh.GetMaterial(dominantMaterial(mesh)); mat != nil {
		applyMeshMaterial(res, mat)
	}
	return res
}

// dominantMaterial returns the material index referenced by the most
// faces, or -1 for meshes without materials. Ties go to the lower
// index.
func dominantMaterial(mesh *models.Mesh) int {
	counts := make([]int, mesh.MaterialCount())
	for i := 0; i < mesh.TriangleCount(); i++ {
		if mi := mesh.GetFaceMaterial(i); mi >= 0 && mi < len(counts) {
			counts[mi]++
		}
	}

	best := -1
	for i, c := range counts {
		if best < 0 || c > counts[best] {
			best = i
		}
	}
	return best
}

func buildResources(cfg *ObjectConfig, mesh *models.Mesh, dir string) (*render.Resources, error) {
	// Model materials come first; explicit config overrides them.
	res := ResourcesFor(mesh)

	mc := cfg.Material
	if mc == nil {
		return res, nil
	}

	if len(mc.BaseColor) > 0 {
		switch len(mc.BaseColor) {
		case 3:
			res.BaseColor = [4]float64{mc.BaseColor[0], mc.BaseColor[1], mc.BaseColor[2], 1}
		case 4:
			copy(res.BaseColor[:], mc.BaseColor)
		default:
			return nil, fmt.Errorf("base_color needs 3 or 4 components, got %d", len(mc.BaseColor))
		}
	}
	if mc.Metallic != nil {
		res.Metallic = *mc.Metallic
	}
	if mc.Roughness != nil {
		res.Roughness = *mc.Roughness
	}
	if mc.Emissive != nil {
		res.EmissiveStrength = *mc.Emissive
	}

	load := func(name, path string, dst **render.Texture) error {
		if path == "" {
			return nil
		}
		tex, err := textureFromSpec(dir, path)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = tex
		return nil
	}
	if err := load("albedo_map", mc.AlbedoMap, &res.Albedo); err != nil {
		return nil, err
	}
	if err := load("normal_map", mc.NormalMap, &res.Normal); err != nil {
		return nil, err
	}
	if err := load("metal_rough_map", mc.MetalRoughMap, &res.MetalRough); err != nil {
		return nil, err
	}
	if err := load("emissive_map", mc.EmissiveMap, &res.Emissive); err != nil {
		return nil, err
	}

	return res, nil
}

// applyMeshMaterial copies a loaded model material into resources.
func applyMeshMaterial(res *render.Resources, mat *models.Material) {
	res.BaseColor = mat.BaseColor
	res.Metallic = mat.Metallic
	res.Roughness = mat.Roughness

	ef := mat.EmissiveFactor
	res.EmissiveStrength = math.Max(ef[0], math.Max(ef[1], ef[2]))

	if mat.BaseMap != nil {
		res.Albedo = render.TextureFromImage(mat.BaseMap)
	}
	if mat.NormalMap != nil {
		res.Normal = render.TextureFromImage(mat.NormalMap)
	}
	if mat.MetalRoughMap != nil {
		res.MetalRough = render.TextureFromImage(mat.MetalRoughMap)
	}
	if mat.EmissiveMap != nil {
		res.Emissive = render.TextureFromImage(mat.EmissiveMap)
	}
}

func assetPath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// proceduralSize is the pixel resolution of generated textures.
const proceduralSize = 256

// textureFromSpec resolves a material map entry. "checker:" and
// "gradient:" specs build procedural textures; anything else is an image
// file loaded relative to the scene directory.
func textureFromSpec(dir, spec string) (*render.Texture, error) {
	kind, rest, _ := strings.Cut(spec, ":")
	switch kind {
	case "checker":
		return checkerTexture(rest)
	case "gradient":
		return gradientTexture(rest)
	}
	return render.LoadTexture(assetPath(dir, spec))
}

// checkerTexture parses "checker[:checks[:hex:hex]]", a board of
// checks x checks squares.
func checkerTexture(args string) (*render.Texture, error) {
	checks := 8
	c1 := render.RGB(230, 230, 230)
	c2 := render.RGB(60, 60, 60)

	if args != "" {
		parts := strings.Split(args, ":")
		if len(parts) != 1 && len(parts) != 3 {
			return nil, fmt.Errorf("checker spec needs checks or checks:hex:hex, got %q", args)
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil || n < 1 || n > proceduralSize {
			return nil, fmt.Errorf("checker count %q must be 1 to %d", parts[0], proceduralSize)
		}
		checks = n
		if len(parts) == 3 {
			if c1, err = parseHexColor(parts[1]); err != nil {
				return nil, err
			}
			if c2, err = parseHexColor(parts[2]); err != nil {
				return nil, err
			}
		}
	}
	return render.NewCheckerTexture(proceduralSize, proceduralSize, proceduralSize/checks, c1, c2), nil
}

// gradientTexture parses "gradient[:hex:hex]", a left-to-right blend.
func gradientTexture(args string) (*render.Texture, error) {
	left := render.ColorWhite
	right := render.ColorBlack

	if args != "" {
		parts := strings.Split(args, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("gradient spec needs hex:hex, got %q", args)
		}
		var err error
		if left, err = parseHexColor(parts[0]); err != nil {
			return nil, err
		}
		if right, err = parseHexColor(parts[1]); err != nil {
			return nil, err
		}
	}
	tex := render.NewGradientTexture(proceduralSize, proceduralSize, left, right)
	tex.FilterMode = render.FilterBilinear
	return tex, nil
}

func parseHexColor(s string) (render.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return render.Color{}, fmt.Errorf("hex color %q needs 6 digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return render.Color{}, fmt.Errorf("hex color %q: %w", s, err)
	}
	return render.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// vec3 converts a YAML number list into a vector, requiring exactly
// three components.
func vec3(v []float64) (math3d.Vec3, error) {
	if len(v) != 3 {
		return math3d.Vec3{}, fmt.Errorf("need 3 components, got %d", len(v))
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}
