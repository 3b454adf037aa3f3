// charcoal - software-rendered 3D scenes.
// Renders YAML scenes and glTF models on the CPU, to the terminal, to
// PNG files, or to a native window.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/charcoal3d/charcoal/pkg/math3d"
	"github.com/charcoal3d/charcoal/pkg/models"
	"github.com/charcoal3d/charcoal/pkg/render"
	"github.com/charcoal3d/charcoal/pkg/scene"
)

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:   "charcoal",
		Short: "CPU rasterizer for glTF models and YAML scenes",
		Long: "charcoal renders 3D scenes entirely on the CPU: vertex shading,\n" +
			"near-plane clipping, perspective-correct scanline rasterization, and\n" +
			"deferred lighting with SSAO and bloom.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline details to stderr")

	root.AddCommand(newViewCmd(), newRenderCmd(), newWindowCmd())

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

// optionFlags carries the pipeline option overrides every subcommand
// accepts. Only flags the user set explicitly are applied, so untouched
// options keep the scene file's values.
type optionFlags struct {
	fs *pflag.FlagSet

	wireframe bool
	bloom     bool
	ssao      bool
	lighting  bool
	deferred  bool
	exposure  float64
	cull      string
	winding   string
}

func addOptionFlags(cmd *cobra.Command) *optionFlags {
	of := &optionFlags{fs: cmd.Flags()}
	of.fs.BoolVar(&of.wireframe, "wireframe", false, "draw clipped triangle edges")
	of.fs.BoolVar(&of.bloom, "bloom", true, "bloom bright highlights")
	of.fs.BoolVar(&of.ssao, "ssao", false, "screen-space ambient occlusion")
	of.fs.BoolVar(&of.lighting, "lighting", true, "fragment lighting")
	of.fs.BoolVar(&of.deferred, "deferred", true, "deferred lighting during composition")
	of.fs.Float64Var(&of.exposure, "exposure", 1.2, "tone mapping exposure")
	of.fs.StringVar(&of.cull, "cull", "back", "face culling: none, back, or front")
	of.fs.StringVar(&of.winding, "winding", "ccw", "front-face winding: ccw or cw")
	return of
}

// apply overlays the explicitly set flags onto opts.
func (of *optionFlags) apply(opts *render.Options) error {
	if of.fs.Changed("wireframe") {
		opts.Wireframe = of.wireframe
	}
	if of.fs.Changed("bloom") {
		opts.Bloom = of.bloom
	}
	if of.fs.Changed("ssao") {
		opts.SSAO = of.ssao
	}
	if of.fs.Changed("lighting") {
		opts.Lighting = of.lighting
	}
	if of.fs.Changed("deferred") {
		opts.DeferredLighting = of.deferred
	}
	if of.fs.Changed("exposure") {
		opts.Exposure = of.exposure
	}
	if of.fs.Changed("cull") {
		mode, err := render.ParseCullMode(of.cull)
		if err != nil {
			return err
		}
		opts.Cull = mode
	}
	if of.fs.Changed("winding") {
		w, err := render.ParseWinding(of.winding)
		if err != nil {
			return err
		}
		opts.Winding = w
	}
	return nil
}

// sceneFromArgs loads either a YAML scene or a single model wrapped in a
// default setup.
func sceneFromArgs(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return scene.Load(path)
	case ".glb", ".gltf":
		return defaultScene(path)
	}
	return nil, fmt.Errorf("unsupported file type %q (use .yaml, .glb, or .gltf)", filepath.Ext(path))
}

// defaultScene wraps a bare model in a key/fill light setup with the
// camera pulled back to frame it.
func defaultScene(modelPath string) (*scene.Scene, error) {
	mesh, err := models.LoadGLB(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	normalizeMesh(mesh)

	cam := render.NewCamera()
	cam.SetClipPlanes(0.1, 100)
	cam.SetPosition(math3d.V3(0, 0.6, 3.2))
	cam.LookAt(math3d.V3(0, 0, 0))

	return &scene.Scene{
		Name:    filepath.Base(modelPath),
		Camera:  cam,
		Options: render.DefaultOptions(),
		Lights: []render.Light{
			{
				Kind:      render.LightDirectional,
				Direction: math3d.V3(0.5, 1, 0.3).Normalize(),
				Color:     render.HDR(1, 1, 1),
				Intensity: 2.5,
			},
			{
				Kind:      render.LightDirectional,
				Direction: math3d.V3(-0.6, 0.2, -0.5).Normalize(),
				Color:     render.HDR(0.4, 0.5, 0.7),
				Intensity: 0.8,
			},
		},
		Objects: []scene.Object{{
			Name:      filepath.Base(modelPath),
			Mesh:      mesh,
			Transform: math3d.Identity(),
			Shader:    render.StandardShader{},
			Resources: scene.ResourcesFor(mesh),
		}},
	}, nil
}

// normalizeMesh centers a model at the origin and scales its longest
// axis to 2 units.
func normalizeMesh(mesh *models.Mesh) {
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		scale := 2.0 / maxDim
		mesh.Transform(math3d.Scale(math3d.V3(scale, scale, scale)).
			Mul(math3d.Translate(center.Scale(-1))))
	}
}

// renderFrame draws one frame of the scene at time t. userRot is applied
// in world space to everything except sky backdrops, on top of each
// object's own spin.
func renderFrame(p *render.Pipeline, s *scene.Scene, t float64, userRot math3d.Mat4) {
	ctx := s.Camera.Context()
	ctx.Lights = s.Lights
	ctx.Time = t

	p.BeginFrame(&ctx)
	for i := range s.Objects {
		obj := &s.Objects[i]

		transform := obj.Transform
		if obj.Spin != 0 {
			transform = transform.Mul(math3d.RotateY(obj.Spin * t))
		}
		if _, isSky := obj.Shader.(render.SkyShader); !isSky {
			transform = userRot.Mul(transform)
		}

		p.DrawMesh(obj.Mesh, transform, obj.Shader, obj.Resources)
	}
	p.EndFrame()
}

// drawDebugOverlay marks up a composed frame with the world grid, axes,
// object bounds, and light markers. Object transforms mirror renderFrame
// so the boxes track spinning geometry.
func drawDebugOverlay(fb *render.Framebuffer, s *scene.Scene, t float64, userRot math3d.Mat4) {
	dbg := render.NewWireframe(s.Camera, fb)
	dbg.DrawGrid(10, 1, render.RGB(55, 55, 70))
	dbg.DrawAxes(1.5)

	for i := range s.Objects {
		obj := &s.Objects[i]
		if _, isSky := obj.Shader.(render.SkyShader); isSky {
			continue
		}
		transform := obj.Transform
		if obj.Spin != 0 {
			transform = transform.Mul(math3d.RotateY(obj.Spin * t))
		}
		mn, mx := obj.Mesh.GetBounds()
		box := render.AABB{Min: mn, Max: mx}.Transform(userRot.Mul(transform))
		dbg.DrawBounds(box, render.ColorYellow)
	}

	for _, l := range s.Lights {
		switch l.Kind {
		case render.LightPoint:
			dbg.DrawMarker(l.Position, 0.2, render.ColorCyan)
		case render.LightDirectional:
			// A ray from the origin toward the light, anchored like the axes.
			dbg.DrawLine3D(math3d.Zero3(), l.Direction.Scale(2), render.ColorMagenta)
		}
	}
}
