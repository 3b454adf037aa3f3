package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestTexturePixelAccess(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.SetPixel(1, 1, ColorWhite)
	if got := tex.GetPixel(1, 1); got != ColorWhite {
		t.Errorf("GetPixel(1,1) = %+v, want white", got)
	}

	// Out-of-range writes are dropped, reads come back zero.
	tex.SetPixel(-1, 0, ColorWhite)
	tex.SetPixel(0, 2, ColorWhite)
	if got := tex.GetPixel(-1, 0); got != (Color{}) {
		t.Errorf("GetPixel(-1,0) = %+v, want zero", got)
	}
	if got := tex.GetPixel(0, 0); got != (Color{}) {
		t.Errorf("dropped write landed on (0,0): %+v", got)
	}
}

func TestTextureWrapModes(t *testing.T) {
	red := Color{R: 255, A: 255}
	blue := Color{B: 255, A: 255}
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, red)
	tex.SetPixel(1, 0, blue)

	tests := []struct {
		name string
		wrap WrapMode
		u    float64
		want Color
	}{
		{"repeat in range", WrapRepeat, 0.25, red},
		{"repeat past one", WrapRepeat, 1.25, red},
		{"repeat negative", WrapRepeat, -0.25, blue},
		{"clamp high", WrapClamp, 1.5, blue},
		{"clamp low", WrapClamp, -0.5, red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex.WrapU = tt.wrap
			if got := tex.Sample(tt.u, 0.5); got != tt.want {
				t.Errorf("Sample(%g) = %+v, want %+v", tt.u, got, tt.want)
			}
		})
	}
}

// TestTextureVerticalFlip pins the convention: V runs bottom-up while
// image rows run top-down.
func TestTextureVerticalFlip(t *testing.T) {
	top := Color{R: 255, A: 255}
	bottom := Color{B: 255, A: 255}
	tex := NewTexture(1, 2)
	tex.SetPixel(0, 0, top)
	tex.SetPixel(0, 1, bottom)

	if got := tex.Sample(0.5, 0.9); got != top {
		t.Errorf("high V = %+v, want the top row", got)
	}
	if got := tex.Sample(0.5, 0.1); got != bottom {
		t.Errorf("low V = %+v, want the bottom row", got)
	}
}

func TestBilinearSampling(t *testing.T) {
	black := Color{A: 255}
	white := Color{R: 255, G: 255, B: 255, A: 255}
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, black)
	tex.SetPixel(1, 0, white)
	tex.FilterMode = FilterBilinear
	tex.WrapU = WrapClamp
	tex.WrapV = WrapClamp

	// Texel centers return the stored pixels untouched.
	if got := tex.Sample(0.25, 0.5); got != black {
		t.Errorf("left texel center = %+v, want black", got)
	}
	if got := tex.Sample(0.75, 0.5); got != white {
		t.Errorf("right texel center = %+v, want white", got)
	}

	// Halfway between texels blends evenly, truncated to 8 bits.
	mid := tex.Sample(0.5, 0.5)
	if mid.R != 127 || mid.G != 127 || mid.B != 127 || mid.A != 255 {
		t.Errorf("midpoint = %+v, want 127 gray", mid)
	}
}

func TestBilinearRepeatSeam(t *testing.T) {
	red := Color{R: 255, A: 255}
	blue := Color{B: 255, A: 255}
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, red)
	tex.SetPixel(1, 0, blue)
	tex.FilterMode = FilterBilinear

	// U=0 sits on the tile boundary, half a texel from each edge pixel,
	// so repeat wrapping blends across the seam.
	got := tex.Sample(0, 0.5)
	want := Color{R: 127, B: 127, A: 255}
	if got != want {
		t.Errorf("seam sample = %+v, want %+v", got, want)
	}
}

func TestSRGBTable(t *testing.T) {
	if srgbLUT[0] != 0 {
		t.Errorf("srgbLUT[0] = %g, want 0", srgbLUT[0])
	}
	if srgbLUT[255] != 1 {
		t.Errorf("srgbLUT[255] = %g, want 1", srgbLUT[255])
	}
	for i := 1; i < 256; i++ {
		if srgbLUT[i] <= srgbLUT[i-1] {
			t.Fatalf("srgbLUT not increasing at %d: %g after %g", i, srgbLUT[i], srgbLUT[i-1])
		}
	}
	// Decoding darkens midtones: 50% gray holds about 21% linear light.
	if l := srgbLUT[128]; l < 0.21 || l > 0.22 {
		t.Errorf("srgbLUT[128] = %g, want about 0.215", l)
	}
}

func TestSampleLinearAndData(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, Color{R: 255, G: 128, B: 0, A: 64})

	r, g, b, a := tex.SampleLinear(0.5, 0.5)
	if r != 1 || b != 0 {
		t.Errorf("SampleLinear endpoints = %g, %g, want 1, 0", r, b)
	}
	if g != srgbLUT[128] {
		t.Errorf("SampleLinear green = %g, want decoded %g", g, srgbLUT[128])
	}
	if want := 64.0 / 255; a != want {
		t.Errorf("alpha = %g, want %g (no gamma on coverage)", a, want)
	}

	// Data maps skip the sRGB decode.
	x, y, z, w := tex.SampleData(0.5, 0.5)
	if x != 1 || y != 128.0/255 || z != 0 || w != 64.0/255 {
		t.Errorf("SampleData = %g, %g, %g, %g", x, y, z, w)
	}
}

func TestCheckerPattern(t *testing.T) {
	red := Color{R: 255, A: 255}
	blue := Color{B: 255, A: 255}
	tex := NewCheckerTexture(4, 4, 2, red, blue)

	tests := []struct {
		x, y int
		want Color
	}{
		{0, 0, red},
		{1, 1, red},
		{2, 0, blue},
		{0, 2, blue},
		{2, 2, red},
		{3, 3, red},
	}
	for _, tt := range tests {
		if got := tex.GetPixel(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGradientRamp(t *testing.T) {
	tex := NewGradientTexture(3, 1, Color{A: 255}, ColorWhite)

	wants := []uint8{0, 127, 255}
	for x, want := range wants {
		c := tex.GetPixel(x, 0)
		if c.R != want || c.G != want || c.B != want {
			t.Errorf("pixel %d = %+v, want gray %d", x, c, want)
		}
	}
}

func TestTextureFromImageBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})

	tex := TextureFromImage(img)
	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(0, 0); got != (Color{R: 255, A: 255}) {
		t.Errorf("pixel 0 = %+v, want red", got)
	}

	// Sub-images carry non-zero bounds; pixels must not shift.
	sub := img.SubImage(image.Rect(1, 0, 2, 1))
	tex = TextureFromImage(sub)
	if tex.Width != 1 || tex.Height != 1 {
		t.Fatalf("sub size = %dx%d, want 1x1", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(0, 0); got != (Color{B: 255, A: 255}) {
		t.Errorf("sub pixel = %+v, want blue", got)
	}
}

func TestLoadTexturePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})

	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(0, 0); got != (Color{R: 255, A: 255}) {
		t.Errorf("pixel 0 = %+v, want red", got)
	}
	if got := tex.GetPixel(1, 0); got != (Color{B: 255, A: 255}) {
		t.Errorf("pixel 1 = %+v, want blue", got)
	}

	if _, err := LoadTexture(filepath.Join(dir, "absent.png")); err == nil {
		t.Errorf("LoadTexture accepted a missing file")
	}
}
