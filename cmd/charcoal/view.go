package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/charcoal3d/charcoal/pkg/math3d"
	"github.com/charcoal3d/charcoal/pkg/render"
	"github.com/charcoal3d/charcoal/pkg/scene"
)

func newViewCmd() *cobra.Command {
	var (
		fps      int
		bgColor  string
		optFlags *optionFlags
	)

	cmd := &cobra.Command{
		Use:   "view <scene.yaml|model.glb>",
		Short: "View a scene interactively in the terminal",
		Long: "view renders the scene into terminal cells using half blocks.\n\n" +
			"Controls:\n" +
			"  Mouse drag  - Rotate (yaw/pitch)\n" +
			"  Scroll      - Dolly in/out\n" +
			"  W/S A/D Q/E - Pitch, yaw, roll\n" +
			"  Shift+Arrows- Orbit the camera\n" +
			"  Space       - Random impulse\n" +
			"  R           - Reset view\n" +
			"  X           - Toggle wireframe\n" +
			"  B           - Toggle bloom\n" +
			"  O           - Toggle ambient occlusion\n" +
			"  L           - Toggle lighting\n" +
			"  G           - Toggle deferred lighting\n" +
			"  V           - Toggle debug overlay (grid, bounds, lights)\n" +
			"  ?           - Toggle HUD\n" +
			"  Esc         - Quit",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sceneFromArgs(args[0])
			if err != nil {
				return err
			}
			if err := optFlags.apply(&s.Options); err != nil {
				return err
			}
			return runView(s, fps, bgColor)
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")
	cmd.Flags().StringVar(&bgColor, "bg", "18,18,24", "background color (R,G,B)")
	optFlags = addOptionFlags(cmd)
	return cmd
}

// rotationAxis tracks position and velocity for one rotation axis with
// spring decay.
type rotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func newRotationAxis(fps int) rotationAxis {
	return rotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *rotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// rotationState holds the three view rotation axes.
type rotationState struct {
	Pitch, Yaw, Roll rotationAxis
	fps              int
}

func newRotationState(fps int) *rotationState {
	return &rotationState{
		Pitch: newRotationAxis(fps),
		Yaw:   newRotationAxis(fps),
		Roll:  newRotationAxis(fps),
		fps:   fps,
	}
}

func (r *rotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *rotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *rotationState) Reset() {
	r.Pitch = newRotationAxis(r.fps)
	r.Yaw = newRotationAxis(r.fps)
	r.Roll = newRotationAxis(r.fps)
}

func (r *rotationState) Matrix() math3d.Mat4 {
	return math3d.RotateX(r.Pitch.Position).
		Mul(math3d.RotateY(r.Yaw.Position)).
		Mul(math3d.RotateZ(r.Roll.Position))
}

// hud renders an overlay with scene info and pipeline toggles.
type hud struct {
	name      string
	show      bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(name string) *hud {
	return &hud{
		name:    name,
		show:    true,
		fpsTime: time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *hud) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal.
func (h *hud) Render(width, height int, opts *render.Options, stats render.FrameStats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if !h.show {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.name)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.name, reset)

	triStr := fmt.Sprintf("%d tris", stats.TrianglesFilled)
	triCol := max(width-len(triStr)-2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, triCol), bgBlack, fgCyan, bold, triStr, reset)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modeStr := fmt.Sprintf("%s%s %s Wire  %s Bloom  %s AO  %s Light  %s Deferred %s",
		bgBlack, fgWhite,
		check(opts.Wireframe), check(opts.Bloom), check(opts.SSAO),
		check(opts.Lighting), check(opts.DeferredLighting), reset)
	fmt.Print(moveTo(height, 1) + modeStr)
}

func runView(s *scene.Scene, targetFPS int, bgColor string) error {
	var bgR, bgG, bgB uint8 = 18, 18, 24
	fmt.Sscanf(bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)
	bg := render.RGB(bgR, bgG, bgB)

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mode

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := render.NewTargetFramebuffer(fbWidth, fbHeight)

	pipeline := render.NewPipeline(s.Options)
	pipeline.Bind(fb)

	camera := s.Camera
	camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))
	camHome := *camera

	rotation := newRotationState(targetFPS)
	overlay := newHUD(s.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Input state
	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	var mouseDown bool
	var lastMouseX, lastMouseY int
	var showDebug bool

	opts := pipeline.Options()

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				termRenderer = render.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = termRenderer.FramebufferSize()
				fb = render.NewTargetFramebuffer(fbWidth, fbHeight)
				pipeline.Bind(fb)
				camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("r"):
					rotation.Reset()
					camera.SetPosition(camHome.Position)
					camera.SetRotation(camHome.Pitch, camHome.Yaw, camHome.Roll)
				case ev.MatchString("shift+left"):
					camera.Orbit(math3d.Zero3(), 0.15, 0)
				case ev.MatchString("shift+right"):
					camera.Orbit(math3d.Zero3(), -0.15, 0)
				case ev.MatchString("shift+up"):
					camera.Orbit(math3d.Zero3(), 0, 0.15)
				case ev.MatchString("shift+down"):
					camera.Orbit(math3d.Zero3(), 0, -0.15)
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("space"):
					rotation.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("x"):
					opts.Wireframe = !opts.Wireframe
				case ev.MatchString("b"):
					opts.Bloom = !opts.Bloom
				case ev.MatchString("o"):
					opts.SSAO = !opts.SSAO
				case ev.MatchString("l"):
					opts.Lighting = !opts.Lighting
				case ev.MatchString("g"):
					opts.DeferredLighting = !opts.DeferredLighting
				case ev.MatchString("v"):
					showDebug = !showDebug
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					overlay.show = !overlay.show
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					camera.MoveForward(0.4)
				case uv.MouseWheelDown:
					camera.MoveForward(-0.4)
				}
			}
		}
	}()

	targetDuration := time.Second / time.Duration(targetFPS)
	start := time.Now()
	lastFrame := start

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		// Apply input torque and decay it (key release events unreliable)
		rotation.ApplyImpulse(
			inputTorque.pitch*dt,
			inputTorque.yaw*dt,
			inputTorque.roll*dt,
		)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9

		rotation.Update()

		fb.Clear(bg)
		t := now.Sub(start).Seconds()
		userRot := rotation.Matrix()
		renderFrame(pipeline, s, t, userRot)
		if showDebug {
			drawDebugOverlay(fb, s, t, userRot)
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		overlay.UpdateFPS()
		overlay.Render(width, height, opts, pipeline.Stats())

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
