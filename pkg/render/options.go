package render

import "fmt"

// CullMode selects which triangle facing is rejected during assembly.
type CullMode int

const (
	// CullNone keeps every triangle regardless of facing.
	CullNone CullMode = iota
	// CullBack rejects triangles facing away from the camera.
	CullBack
	// CullFront rejects triangles facing toward the camera.
	CullFront
)

// String returns the cull mode name.
func (c CullMode) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	default:
		return "none"
	}
}

// ParseCullMode maps a configuration name to a cull mode.
func ParseCullMode(name string) (CullMode, error) {
	switch name {
	case "", "back":
		return CullBack, nil
	case "front":
		return CullFront, nil
	case "none":
		return CullNone, nil
	}
	return CullNone, fmt.Errorf("unknown cull mode %q", name)
}

// Winding declares the vertex order that mesh data uses for front faces.
// The pipeline's canonical front winding is counter-clockwise; clockwise
// input is normalized by swapping two vertices at assembly time.
type Winding int

const (
	// WindingCounterClockwise marks counter-clockwise front faces (glTF order).
	WindingCounterClockwise Winding = iota
	// WindingClockwise marks clockwise front faces.
	WindingClockwise
)

// String returns the winding name.
func (w Winding) String() string {
	if w == WindingClockwise {
		return "cw"
	}
	return "ccw"
}

// ParseWinding maps a configuration name to a winding order.
func ParseWinding(name string) (Winding, error) {
	switch name {
	case "", "ccw":
		return WindingCounterClockwise, nil
	case "cw":
		return WindingClockwise, nil
	}
	return WindingCounterClockwise, fmt.Errorf("unknown winding %q", name)
}

// Options is the pipeline's configuration surface. Toggles are read at
// draw and compose time; changing them mid-frame affects only the work
// that has not run yet.
type Options struct {
	// Wireframe draws clipped triangle edges into the visible buffer
	// after composition.
	Wireframe bool

	// Rasterization enables the scanline fill. Off skips all pixel work
	// while wireframe drawing may still run.
	Rasterization bool

	// Lighting enables the fragment lighting pass. Off emits raw albedo
	// plus emission for every shaded pixel.
	Lighting bool

	// DeferredLighting routes shaded pixels through the G-buffer and
	// lights them during composition instead of at rasterization time.
	DeferredLighting bool

	// Bloom spreads bright deferred pixels with a Gaussian blur.
	Bloom bool

	// SSAO darkens deferred pixels by screen-space ambient occlusion.
	SSAO bool

	Cull    CullMode
	Winding Winding

	// BloomRadius is the Gaussian blur radius in pixels.
	BloomRadius int

	// Exposure scales the tone mapping curve.
	Exposure float64

	// ToneMapping compresses HDR output with an exposure curve followed
	// by linear-to-sRGB conversion. Off clamps linear values directly.
	ToneMapping bool
}

// DefaultOptions returns the options a renderer starts with: full shading
// through the deferred path, back-face culling, counter-clockwise input.
func DefaultOptions() Options {
	return Options{
		Rasterization:    true,
		Lighting:         true,
		DeferredLighting: true,
		Bloom:            true,
		Cull:             CullBack,
		Winding:          WindingCounterClockwise,
		BloomRadius:      4,
		Exposure:         1.2,
		ToneMapping:      true,
	}
}
