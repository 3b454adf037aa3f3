package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// bloomThreshold marks a pixel as a bloom source when any channel
// reaches it.
const bloomThreshold = 0.95

// wireColor is the overlay color for wireframe edges.
var wireColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// compose runs the frame-end passes in order: deferred lighting, SSAO,
// bloom, tone mapping into the visible buffer, then the forward overlay.
// Forward pixels win over deferred ones at the same location; they are
// the pixels that opted out of deferred shading.
func (p *Pipeline) compose(fb *Framebuffer) {
	if p.opts.Rasterization && p.opts.DeferredLighting {
		p.deferredPass(fb)
		if p.opts.SSAO {
			p.ssaoPass(fb)
		}
		if p.opts.Bloom && p.opts.BloomRadius > 0 {
			p.bloomPass(fb)
		}
		for i, c := range fb.Deferred {
			fb.Pixels[i] = p.ldrColor(c, 255)
		}
	}
	for i, c := range fb.Forward {
		if c.A != 0 {
			fb.Pixels[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		}
	}
}

// deferredPass lights every written G-buffer sample into the deferred
// buffer. Unwritten pixels keep the cleared black.
func (p *Pipeline) deferredPass(fb *Framebuffer) {
	for i := range p.gbuffer {
		e := &p.gbuffer[i]
		if !e.sample.Written {
			continue
		}
		fb.Deferred[i] = p.shade(e.shader, e.res, e.sample)
	}
}

// ssaoOffsets is the neighborhood ring sampled by the occlusion estimate.
var ssaoOffsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-2, -2}, {2, -2}, {-2, 2}, {2, 2},
}

// ssaoPass estimates per-pixel ambient occlusion from neighboring
// G-buffer samples and attenuates the deferred color. A neighbor above
// the surface plane occludes in proportion to its elevation over the
// horizon, with distance falloff.
func (p *Pipeline) ssaoPass(fb *Framebuffer) {
	const bias = 0.05
	const strength = 1.0

	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			i := y*p.width + x
			e := &p.gbuffer[i]
			if !e.sample.Written {
				p.ssao[i] = 1
				continue
			}
			occ := 0.0
			samples := 0
			for _, off := range ssaoOffsets {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= p.width || ny < 0 || ny >= p.height {
					continue
				}
				nb := &p.gbuffer[ny*p.width+nx]
				if !nb.sample.Written {
					continue
				}
				d := nb.sample.WorldPos.Sub(e.sample.WorldPos)
				dist := d.Len()
				if dist < 1e-6 {
					continue
				}
				samples++
				elev := e.sample.Normal.Dot(d.Scale(1/dist)) - bias
				if elev > 0 {
					occ += elev / (1 + dist)
				}
			}
			ao := 1.0
			if samples > 0 {
				ao = 1 - strength*occ/float64(samples)
				if ao < 0 {
					ao = 0
				}
			}
			p.ssao[i] = ao
		}
	}

	for i := range fb.Deferred {
		fb.Deferred[i] = fb.Deferred[i].Scale(p.ssao[i])
	}
}

// bloomPass extracts pixels with any channel at or above the bright
// threshold, blurs them with a separable Gaussian, and adds the result
// back into the deferred buffer.
func (p *Pipeline) bloomPass(fb *Framebuffer) {
	for i, c := range fb.Deferred {
		if c.R >= bloomThreshold || c.G >= bloomThreshold || c.B >= bloomThreshold {
			p.bloomA[i] = c
		} else {
			p.bloomA[i] = HDRColor{}
		}
	}
	kernel := gaussianKernel(p.opts.BloomRadius)
	blurPass(p.bloomB, p.bloomA, p.width, p.height, kernel, true)
	blurPass(p.bloomA, p.bloomB, p.width, p.height, kernel, false)
	for i := range fb.Deferred {
		fb.Deferred[i] = fb.Deferred[i].Add(p.bloomA[i])
	}
}

// gaussianKernel builds normalized blur weights for offsets
// -radius..radius.
func gaussianKernel(radius int) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	sigma := float64(radius) / 2
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = w
		sum += w
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// blurPass convolves src into dst along one axis, clamping samples at the
// image edges.
func blurPass(dst, src []HDRColor, width, height int, kernel []float64, horizontal bool) {
	radius := len(kernel) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc HDRColor
			for k := -radius; k <= radius; k++ {
				sx, sy := x, y
				if horizontal {
					sx = clampInt(x+k, 0, width-1)
				} else {
					sy = clampInt(y+k, 0, height-1)
				}
				acc = acc.Add(src[sy*width+sx].Scale(kernel[k+radius]))
			}
			dst[y*width+x] = acc
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToneMap compresses a linear HDR color with the exposure curve
// 1 - exp(-c*exposure), leaving every channel in [0, 1).
func ToneMap(c HDRColor, exposure float64) HDRColor {
	return HDRColor{
		R: 1 - math.Exp(-c.R*exposure),
		G: 1 - math.Exp(-c.G*exposure),
		B: 1 - math.Exp(-c.B*exposure),
	}
}

// ldrColor packs a linear HDR color for display. With tone mapping on,
// the exposure curve runs first and the result is gamma-encoded to sRGB;
// off, linear values are clamped directly.
func (p *Pipeline) ldrColor(c HDRColor, alpha uint8) color.RGBA {
	if p.opts.ToneMapping {
		t := ToneMap(c, p.opts.Exposure)
		r, g, b := colorful.LinearRgb(t.R, t.G, t.B).Clamped().RGB255()
		return color.RGBA{R: r, G: g, B: b, A: alpha}
	}
	return color.RGBA{
		R: uint8(math.Max(0, math.Min(1, c.R)) * 255),
		G: uint8(math.Max(0, math.Min(1, c.G)) * 255),
		B: uint8(math.Max(0, math.Min(1, c.B)) * 255),
		A: alpha,
	}
}

// drawWires draws the queued wireframe edges over the composed image.
func (p *Pipeline) drawWires(fb *Framebuffer) {
	for _, s := range p.wires {
		fb.DrawLine(s.x0, s.y0, s.x1, s.y1, wireColor)
	}
}
