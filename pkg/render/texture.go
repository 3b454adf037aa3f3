package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/webp" // register decoder
)

// WrapMode folds a texture coordinate outside [0,1] back into range.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // tile the image endlessly
	WrapClamp                  // extend the edge texels outward
)

// FilterMode selects how Sample reads the image.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // snap to the nearest texel
	FilterBilinear                   // blend the four nearest texels
)

// Texture is an 8-bit RGBA image addressed by UV coordinates. Pixels
// are stored row-major with row 0 at the top of the image; sampling
// treats V=0 as the bottom, so rows can be stored as decoded.
type Texture struct {
	Width  int
	Height int
	Pixels []Color

	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture returns a zeroed texture that repeats in both directions
// and samples nearest-neighbor.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture reads and decodes an image file. PNG, JPEG, and WebP are
// supported.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts any image.Image, keeping the high byte of
// each 16-bit premultiplied channel.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			tex.Pixels[i] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
			i++
		}
	}
	return tex
}

// NewCheckerTexture builds a checkerboard of checkSize-pixel squares.
// c1 holds the square at the origin.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)

	i := 0
	for y := range height {
		band := (y / checkSize) % 2
		for x := range width {
			if (x/checkSize)%2 == band {
				tex.Pixels[i] = c1
			} else {
				tex.Pixels[i] = c2
			}
			i++
		}
	}
	return tex
}

// NewGradientTexture builds a horizontal ramp from left to right. Every
// row is the same.
func NewGradientTexture(width, height int, left, right Color) *Texture {
	tex := NewTexture(width, height)

	row := tex.Pixels[:width]
	for x := range row {
		row[x] = lerpColor(left, right, float64(x)/float64(width-1))
	}
	for y := 1; y < height; y++ {
		copy(tex.Pixels[y*width:], row)
	}
	return tex
}

// SetPixel writes one pixel. Writes outside the image are dropped.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel reads one pixel, zero for coordinates outside the image.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample reads the texture at (u, v) with the configured wrap and
// filter modes. V increases upward while pixel rows run downward, so V
// flips before the row lookup.
func (t *Texture) Sample(u, v float64) Color {
	u = wrapUV(u, t.WrapU)
	v = 1 - wrapUV(v, t.WrapV)

	if t.FilterMode == FilterBilinear {
		return t.bilinear(u, v)
	}
	return t.nearest(u, v)
}

// srgbLUT maps 8-bit sRGB channel values to linear light. Built once at
// startup from the colorful transfer function so per-sample decoding is a
// table lookup.
var srgbLUT [256]float64

func init() {
	for i := range srgbLUT {
		v := float64(i) / 255
		c := colorful.Color{R: v, G: v, B: v}
		srgbLUT[i], _, _ = c.LinearRgb()
	}
}

// SampleLinear samples the texture as sRGB-encoded color, returning
// linear-light channels in [0,1]. Alpha is treated as linear coverage.
func (t *Texture) SampleLinear(u, v float64) (r, g, b, a float64) {
	c := t.Sample(u, v)
	return srgbLUT[c.R], srgbLUT[c.G], srgbLUT[c.B], float64(c.A) / 255
}

// SampleData samples the texture as raw data channels (normal maps,
// metallic-roughness maps) with no gamma decoding.
func (t *Texture) SampleData(u, v float64) (x, y, z, w float64) {
	c := t.Sample(u, v)
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// wrapUV folds a coordinate into [0,1]. Repeat keeps the fractional
// part, clamp pins to the edges.
func wrapUV(c float64, mode WrapMode) float64 {
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}

// nearest picks the texel whose cell contains (u, v).
func (t *Texture) nearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

// bilinear blends the four texels around (u, v). Texel centers sit at
// half-pixel offsets, so a sample on a center returns that pixel
// untouched.
func (t *Texture) bilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapTexel(x0+1, t.Width, t.WrapU)
	y1 := wrapTexel(y0+1, t.Height, t.WrapV)
	x0 = wrapTexel(x0, t.Width, t.WrapU)
	y0 = wrapTexel(y0, t.Height, t.WrapV)

	top := lerpColor(t.Pixels[y0*t.Width+x0], t.Pixels[y0*t.Width+x1], tx)
	bot := lerpColor(t.Pixels[y1*t.Width+x0], t.Pixels[y1*t.Width+x1], tx)
	return lerpColor(top, bot, ty)
}

// wrapTexel folds a texel index into [0, n).
func wrapTexel(i, n int, mode WrapMode) int {
	if mode == WrapClamp {
		return min(max(i, 0), n-1)
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// lerpColor interpolates per channel, truncating to 8 bits.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}
