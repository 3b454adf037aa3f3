// Package render provides the software rasterization pipeline for charcoal.
package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Color aliases color.RGBA; it is the pixel format of every color
// buffer in the package.
type Color = color.RGBA

// Named colors for overlays and debug drawing.
var (
	ColorBlack   = Color{0, 0, 0, 255}
	ColorWhite   = Color{255, 255, 255, 255}
	ColorRed     = Color{255, 0, 0, 255}
	ColorGreen   = Color{0, 255, 0, 255}
	ColorBlue    = Color{0, 0, 255, 255}
	ColorYellow  = Color{255, 255, 0, 255}
	ColorCyan    = Color{0, 255, 255, 255}
	ColorMagenta = Color{255, 0, 255, 255}
)

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// RGBA builds a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

// Framebuffer is the render target for a frame. Pixels holds the visible
// output; the remaining slices are optional attachments consumed by the
// pipeline. A framebuffer used only for 2D drawing needs no attachments.
//
// Terminal presentation packs two pixel rows into each cell row with
// half-block characters, so a terminal-sized framebuffer is twice as
// tall as the terminal.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color // row-major composed output

	// Depth stores normalized depth per pixel, smaller is closer.
	// Required before binding the framebuffer to a Pipeline.
	Depth []float64

	// Stencil is an optional per-pixel mask written during shading.
	Stencil []uint8

	// Forward accumulates forward-shaded pixels. The alpha byte doubles
	// as a written marker so composition knows which pixels to overlay.
	Forward []Color

	// Deferred accumulates linear HDR light for deferred-shaded pixels.
	Deferred []HDRColor
}

// NewFramebuffer creates a framebuffer with only a color buffer, suitable
// for 2D drawing and UI overlays.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// NewTargetFramebuffer creates a framebuffer with the depth, forward and
// deferred attachments the pipeline requires.
func NewTargetFramebuffer(width, height int) *Framebuffer {
	fb := NewFramebuffer(width, height)
	fb.AttachDepth()
	fb.AttachForward()
	fb.AttachDeferred()
	return fb
}

// AttachDepth allocates the depth attachment if not already present.
func (fb *Framebuffer) AttachDepth() {
	if fb.Depth == nil {
		fb.Depth = make([]float64, fb.Width*fb.Height)
	}
}

// AttachStencil allocates the stencil attachment if not already present.
func (fb *Framebuffer) AttachStencil() {
	if fb.Stencil == nil {
		fb.Stencil = make([]uint8, fb.Width*fb.Height)
	}
}

// AttachForward allocates the forward color attachment if not already present.
func (fb *Framebuffer) AttachForward() {
	if fb.Forward == nil {
		fb.Forward = make([]Color, fb.Width*fb.Height)
	}
}

// AttachDeferred allocates the deferred HDR attachment if not already present.
func (fb *Framebuffer) AttachDeferred() {
	if fb.Deferred == nil {
		fb.Deferred = make([]HDRColor, fb.Width*fb.Height)
	}
}

// Clear fills the color buffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// ClearDepth resets every depth sample to the far sentinel. Uses
// copy-doubling, which is much faster than an element-wise loop.
func (fb *Framebuffer) ClearDepth() {
	if len(fb.Depth) == 0 {
		return
	}
	fb.Depth[0] = math.MaxFloat64
	for i := 1; i < len(fb.Depth); i *= 2 {
		copy(fb.Depth[i:], fb.Depth[:i])
	}
}

// ClearStencil zeroes the stencil attachment.
func (fb *Framebuffer) ClearStencil() {
	for i := range fb.Stencil {
		fb.Stencil[i] = 0
	}
}

// SetPixel writes the pixel at (x, y). Writes outside the buffer are
// dropped.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel reads the pixel at (x, y), zero for coordinates outside the
// buffer.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line with Bresenham stepping. Endpoints may lie
// offscreen; every write is bounds-checked.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage copies the color buffer into a standard image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG writes the color buffer to path as a PNG.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.ToImage())
}
