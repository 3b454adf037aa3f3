package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/charcoal3d/charcoal/pkg/math3d"
	"github.com/charcoal3d/charcoal/pkg/render"
	"github.com/charcoal3d/charcoal/pkg/scene"
)

func newWindowCmd() *cobra.Command {
	var (
		width    int
		height   int
		optFlags *optionFlags
	)

	cmd := &cobra.Command{
		Use:   "window <scene.yaml|model.glb>",
		Short: "View a scene in a native window",
		Long: "window renders the scene into a native window. The same toggles as\n" +
			"the terminal viewer apply: X wireframe, B bloom, O ambient\n" +
			"occlusion, L lighting, G deferred, V debug overlay, H HUD, Esc\n" +
			"quits. Left drag spins the model, right drag orbits the camera,\n" +
			"the wheel dollies.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sceneFromArgs(args[0])
			if err != nil {
				return err
			}
			if err := optFlags.apply(&s.Options); err != nil {
				return err
			}
			return runWindow(s, width, height)
		},
	}

	cmd.Flags().IntVar(&width, "width", 960, "render width in pixels")
	cmd.Flags().IntVar(&height, "height", 540, "render height in pixels")
	optFlags = addOptionFlags(cmd)
	return cmd
}

// windowApp implements ebiten.Game around the software pipeline: frames
// render into the framebuffer on the CPU, then blit to the screen.
type windowApp struct {
	scene     *scene.Scene
	pipeline  *render.Pipeline
	fb        *render.Framebuffer
	opts      *render.Options
	rotation  *rotationState
	buf       []byte
	start     time.Time
	showHUD   bool
	showDebug bool

	mouseDown    bool
	lastX, lastY int
}

func (a *windowApp) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		a.opts.Wireframe = !a.opts.Wireframe
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		a.opts.Bloom = !a.opts.Bloom
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		a.opts.SSAO = !a.opts.SSAO
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		a.opts.Lighting = !a.opts.Lighting
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		a.opts.DeferredLighting = !a.opts.DeferredLighting
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		a.showDebug = !a.showDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.showHUD = !a.showHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.rotation.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.rotation.ApplyImpulse(
			(rand.Float64()-0.5)*0.8,
			(rand.Float64()-0.5)*0.8,
			(rand.Float64()-0.5)*0.8,
		)
	}

	x, y := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if a.mouseDown {
		dx, dy := float64(x-a.lastX), float64(y-a.lastY)
		if left {
			a.rotation.ApplyImpulse(dy*0.005, dx*0.005, 0)
		} else if right {
			a.scene.Camera.Orbit(math3d.Zero3(), -dx*0.01, dy*0.01)
		}
	}
	a.mouseDown = left || right
	a.lastX, a.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		a.scene.Camera.MoveForward(wy * 0.3)
	}

	a.rotation.Update()
	return nil
}

func (a *windowApp) Draw(screen *ebiten.Image) {
	a.fb.Clear(render.RGB(18, 18, 24))
	t := time.Since(a.start).Seconds()
	userRot := a.rotation.Matrix()
	renderFrame(a.pipeline, a.scene, t, userRot)
	if a.showDebug {
		drawDebugOverlay(a.fb, a.scene, t, userRot)
	}

	for i, c := range a.fb.Pixels {
		a.buf[i*4+0] = c.R
		a.buf[i*4+1] = c.G
		a.buf[i*4+2] = c.B
		a.buf[i*4+3] = 255
	}
	screen.WritePixels(a.buf)

	if a.showHUD {
		stats := a.pipeline.Stats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%.0f fps  %d tris filled  %d culled",
			ebiten.ActualFPS(), stats.TrianglesFilled, stats.TrianglesCulled))
	}
}

func (a *windowApp) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.fb.Width, a.fb.Height
}

func runWindow(s *scene.Scene, width, height int) error {
	fb := render.NewTargetFramebuffer(width, height)
	pipeline := render.NewPipeline(s.Options)
	pipeline.Bind(fb)
	s.Camera.SetAspectRatio(float64(width) / float64(height))

	app := &windowApp{
		scene:    s,
		pipeline: pipeline,
		fb:       fb,
		opts:     pipeline.Options(),
		rotation: newRotationState(60),
		buf:      make([]byte, width*height*4),
		start:    time.Now(),
		showHUD:  true,
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("charcoal - " + s.Name)

	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
