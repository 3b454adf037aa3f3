package render

import (
	"math"
)

// rasterizeTriangle takes one clipped projection-space triangle through
// the perspective divide and viewport transform, queues its edges for the
// wireframe overlay, and fills it scanline by scanline.
func (p *Pipeline) rasterizeTriangle(fb *Framebuffer, tri Triangle, shader Shader, res *Resources) {
	w := float64(fb.Width)
	h := float64(fb.Height)
	for i := range tri.V {
		v := tri.V[i].PerspectiveDivide()
		// NDC to pixels, Y flipped so the origin is top-left.
		v.Position.X = (v.Position.X + 1) * w / 2
		v.Position.Y = (1 - v.Position.Y) * h / 2
		tri.V[i] = v
	}

	if p.opts.Wireframe {
		for i := range tri.V {
			a := tri.V[i].Position
			b := tri.V[(i+1)%3].Position
			p.wires = append(p.wires, wireSegment{
				x0: int(a.X), y0: int(a.Y),
				x1: int(b.X), y1: int(b.Y),
			})
		}
	}
	if !p.opts.Rasterization {
		return
	}
	p.stats.TrianglesFilled++

	// Sort ascending by screen Y.
	v0, v1, v2 := tri.V[0], tri.V[1], tri.V[2]
	if v1.Position.Y < v0.Position.Y {
		v0, v1 = v1, v0
	}
	if v2.Position.Y < v1.Position.Y {
		v1, v2 = v2, v1
	}
	if v1.Position.Y < v0.Position.Y {
		v0, v1 = v1, v0
	}

	switch {
	case v0.Position.Y == v1.Position.Y:
		// Natural flat top; order the top edge left to right.
		if v1.Position.X < v0.Position.X {
			v0, v1 = v1, v0
		}
		p.fillFlatTop(fb, v0, v1, v2, shader, res)
	case v1.Position.Y == v2.Position.Y:
		// Natural flat bottom; order the bottom edge left to right.
		if v2.Position.X < v1.Position.X {
			v1, v2 = v2, v1
		}
		p.fillFlatBottom(fb, v0, v1, v2, shader, res)
	default:
		// General triangle: split at the middle vertex's scanline with a
		// synthesized vertex lerped along the long edge.
		t := (v1.Position.Y - v0.Position.Y) / (v2.Position.Y - v0.Position.Y)
		vs := v0.Lerp(v2, t)
		if vs.Position.X < v1.Position.X {
			p.fillFlatBottom(fb, v0, vs, v1, shader, res)
			p.fillFlatTop(fb, vs, v1, v2, shader, res)
		} else {
			p.fillFlatBottom(fb, v0, v1, vs, shader, res)
			p.fillFlatTop(fb, v1, vs, v2, shader, res)
		}
	}
}

// fillFlatTop fills a triangle whose flat edge is on top. v0 is the top
// left, v1 the top right, v2 the bottom point.
func (p *Pipeline) fillFlatTop(fb *Framebuffer, v0, v1, v2 VertexOut, shader Shader, res *Resources) {
	dy := v2.Position.Y - v0.Position.Y
	if dy <= 0 {
		return
	}
	step0 := v2.Sub(v0).Scale(1 / dy)
	step1 := v2.Sub(v1).Scale(1 / dy)
	p.fillFlat(fb, v0.Position.Y, v2.Position.Y, v0, v1, step0, step1, shader, res)
}

// fillFlatBottom fills a triangle whose flat edge is on the bottom. v0 is
// the top point, v1 the bottom left, v2 the bottom right.
func (p *Pipeline) fillFlatBottom(fb *Framebuffer, v0, v1, v2 VertexOut, shader Shader, res *Resources) {
	dy := v2.Position.Y - v0.Position.Y
	if dy <= 0 {
		return
	}
	step0 := v1.Sub(v0).Scale(1 / dy)
	step1 := v2.Sub(v0).Scale(1 / dy)
	p.fillFlat(fb, v0.Position.Y, v2.Position.Y, v0, v0, step0, step1, shader, res)
}

// fillFlat walks the scanlines of one flat-edged triangle half. edge0
// tracks the left edge, edge1 the right edge; both advance by their
// per-scanline step. Row and column bounds snap to pixel centers with the
// ceil(x-0.5) rule, start inclusive and end exclusive, so triangles
// sharing an edge neither overlap nor leave seams. Interpolants are
// pre-stepped to the first covered pixel center.
func (p *Pipeline) fillFlat(fb *Framebuffer, topY, botY float64, edge0, edge1, step0, step1 VertexOut, shader Shader, res *Resources) {
	yStart := int(math.Ceil(topY - 0.5))
	yEnd := int(math.Ceil(botY - 0.5))
	if yStart < 0 {
		yStart = 0
	}
	if yEnd > fb.Height {
		yEnd = fb.Height
	}
	if yStart >= yEnd {
		return
	}

	prestepY := float64(yStart) + 0.5 - topY
	edge0 = edge0.Add(step0.Scale(prestepY))
	edge1 = edge1.Add(step1.Scale(prestepY))

	for y := yStart; y < yEnd; y++ {
		xStart := int(math.Ceil(edge0.Position.X - 0.5))
		xEnd := int(math.Ceil(edge1.Position.X - 0.5))
		if xStart < 0 {
			xStart = 0
		}
		if xEnd > fb.Width {
			xEnd = fb.Width
		}
		if xStart < xEnd {
			dx := edge1.Position.X - edge0.Position.X
			stepX := edge1.Sub(edge0).Scale(1 / dx)
			line := edge0.Add(stepX.Scale(float64(xStart) + 0.5 - edge0.Position.X))
			for x := xStart; x < xEnd; x++ {
				p.shadePixel(fb, x, y, line, shader, res)
				line = line.Add(stepX)
			}
		}
		edge0 = edge0.Add(step0)
		edge1 = edge1.Add(step1)
	}
}

// shadePixel is the single point where screen-space interpolation meets
// shading: it restores perspective-correct attributes, runs the depth and
// alpha tests, asks the geometry shader for a surface sample, and routes
// the result to the forward buffer or the G-buffer. Every outcome is
// either exactly one buffer write path or an early return with no writes.
func (p *Pipeline) shadePixel(fb *Framebuffer, x, y int, v VertexOut, shader Shader, res *Resources) {
	// The interpolated vertex carries 1/w in Position.W; scaling by its
	// reciprocal restores true attribute values.
	w := 1.0 / v.Position.W
	rv := v.Scale(w)

	idx := y*fb.Width + x
	d := p.depthValue(rv.Depth)
	if d >= fb.Depth[idx] {
		return
	}
	if !shader.Alpha(&p.ctx, rv) {
		return
	}
	sample, ok := shader.Geometry(&p.ctx, res, &p.opts, rv)
	if !ok {
		return
	}

	fb.Depth[idx] = d
	if fb.Stencil != nil {
		fb.Stencil[idx] = 0xFF
	}
	if p.opts.DeferredLighting {
		sample.Written = true
		p.gbuffer[idx] = gbufferEntry{sample: sample, shader: shader, res: res}
	} else {
		fb.Forward[idx] = p.ldrColor(p.shade(shader, res, sample), 255)
	}
}

// depthValue maps a view-space distance to the non-linear depth stored in
// the depth buffer: 0 at the near plane, 1 at the far plane, with
// precision concentrated near the camera by the reciprocal mapping.
func (p *Pipeline) depthValue(z float64) float64 {
	return (1/z - 1/p.ctx.Near) / (1/p.ctx.Far - 1/p.ctx.Near)
}

// shade lights a geometry sample, or passes raw albedo plus emission
// through when lighting is disabled.
func (p *Pipeline) shade(shader Shader, res *Resources, s GeometrySample) HDRColor {
	if !p.opts.Lighting {
		return s.Albedo.Add(s.Emission)
	}
	return shader.Fragment(&p.ctx, res, s)
}
