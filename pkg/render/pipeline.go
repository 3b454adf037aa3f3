package render

import (
	"image/color"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// MeshRenderer is the geometry source for DrawMesh. Implemented by
// models.Mesh; declared here so render does not import the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// TangentMeshRenderer optionally exposes per-vertex tangent bases for
// normal mapping.
type TangentMeshRenderer interface {
	MeshRenderer
	GetTangent(i int) (tangent, bitangent math3d.Vec3)
}

// BoundedMeshRenderer optionally exposes a local-space bounding box for
// whole-mesh frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// FrameStats counts per-frame pipeline work for debugging and HUDs.
type FrameStats struct {
	MeshesTested     int // meshes tested against the frustum
	MeshesCulled     int // meshes rejected by the frustum test
	MeshesDrawn      int // meshes that passed the frustum test
	Triangles        int // triangles assembled from mesh faces
	TrianglesCulled  int // triangles rejected by face culling
	TrianglesClipped int // triangles fully behind the near plane
	TrianglesFilled  int // triangles sent to scan conversion
}

// gbufferEntry pairs a geometry sample with the shader and material that
// produced it so the deferred pass can light it at frame end.
type gbufferEntry struct {
	sample GeometrySample
	shader Shader
	res    *Resources
}

// wireSegment is one screen-space triangle edge queued for the wireframe
// overlay.
type wireSegment struct {
	x0, y0, x1, y1 int
}

// defaultResources is substituted when DrawMesh receives nil resources.
var defaultResources = Resources{
	BaseColor: [4]float64{1, 1, 1, 1},
	Roughness: 0.8,
}

// Pipeline is the software rasterization pipeline. Create one per renderer
// with NewPipeline and reuse it across frames; it owns the per-pixel
// auxiliary buffers (G-buffer, bloom scratch, SSAO) and reallocates them
// whenever Bind sees a different target size.
//
// Frame protocol: Bind, then BeginFrame, N times DrawMesh, EndFrame.
// Single-threaded; a draw call runs to completion before the next begins.
type Pipeline struct {
	opts       Options
	fb         *Framebuffer
	ctx        ShaderContext
	frustum    Frustum
	projOrigin math3d.Vec3
	inFrame    bool

	width, height int

	gbuffer []gbufferEntry
	bloomA  []HDRColor
	bloomB  []HDRColor
	ssao    []float64
	wires   []wireSegment
	stats   FrameStats
}

// NewPipeline creates a pipeline with the given options. Buffers are
// allocated lazily on the first Bind.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Options returns a pointer to the pipeline's option set so callers can
// flip toggles between frames.
func (p *Pipeline) Options() *Options {
	return &p.opts
}

// Stats returns the counters gathered since the last BeginFrame.
func (p *Pipeline) Stats() FrameStats {
	return p.stats
}

// Bind attaches the pipeline to a render target. Panics if the target has
// no depth attachment or if any present attachment's length does not match
// the target dimensions; these are setup errors, not runtime conditions.
// Forward and deferred attachments are allocated on demand. Auxiliary
// buffers are reallocated, never resized in place, when dimensions change.
func (p *Pipeline) Bind(fb *Framebuffer) {
	if fb == nil {
		panic("render: Bind with nil framebuffer")
	}
	if fb.Depth == nil {
		panic("render: framebuffer missing depth attachment")
	}
	size := fb.Width * fb.Height
	if len(fb.Pixels) != size || len(fb.Depth) != size {
		panic("render: framebuffer attachment size mismatch")
	}
	if fb.Stencil != nil && len(fb.Stencil) != size {
		panic("render: stencil attachment size mismatch")
	}
	fb.AttachForward()
	fb.AttachDeferred()
	if len(fb.Forward) != size || len(fb.Deferred) != size {
		panic("render: color attachment size mismatch")
	}

	if fb.Width != p.width || fb.Height != p.height {
		p.width, p.height = fb.Width, fb.Height
		p.gbuffer = make([]gbufferEntry, size)
		p.bloomA = make([]HDRColor, size)
		p.bloomB = make([]HDRColor, size)
		p.ssao = make([]float64, size)
		Logger().Info("pipeline bound", "width", fb.Width, "height", fb.Height)
	}
	p.fb = fb
}

// BeginFrame starts a frame: stores the shader context, derives the
// combined view-projection and the culling frustum from it, and resets
// every per-pixel buffer. Panics when called before Bind or with
// degenerate clip planes.
func (p *Pipeline) BeginFrame(ctx *ShaderContext) {
	if p.fb == nil {
		panic("render: BeginFrame before Bind")
	}
	if ctx.Near <= 0 || ctx.Far <= ctx.Near {
		panic("render: invalid near/far planes")
	}

	p.ctx = *ctx
	p.ctx.ViewProjection = p.ctx.Projection.Mul(p.ctx.View)
	p.projOrigin = p.ctx.Projection.MulVec4(math3d.V4(0, 0, 0, 1)).Vec3()
	p.frustum = ExtractFrustum(p.ctx.ViewProjection)
	p.stats = FrameStats{}
	p.wires = p.wires[:0]

	fb := p.fb
	fb.ClearDepth()
	for i := range p.gbuffer {
		p.gbuffer[i] = gbufferEntry{}
	}
	for i := range fb.Forward {
		fb.Forward[i] = color.RGBA{}
	}
	for i := range fb.Deferred {
		fb.Deferred[i] = HDRColor{}
	}
	fb.ClearStencil()
	p.inFrame = true
}

// EndFrame finishes the frame: runs the composition passes into the
// visible color buffer and draws the queued wireframe overlay.
func (p *Pipeline) EndFrame() {
	if !p.inFrame {
		panic("render: EndFrame without BeginFrame")
	}
	p.compose(p.fb)
	p.drawWires(p.fb)
	p.inFrame = false
	Logger().Debug("frame complete",
		"meshes", p.stats.MeshesDrawn,
		"filled", p.stats.TrianglesFilled,
		"culled", p.stats.TrianglesCulled)
}

// DrawMesh runs the mesh through the full pipeline: whole-mesh frustum
// cull, vertex stage, triangle assembly with winding normalization and
// face culling, near-plane clipping, then scan conversion. res may be nil
// for an untextured white material.
func (p *Pipeline) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, shader Shader, res *Resources) {
	if !p.inFrame {
		panic("render: DrawMesh outside BeginFrame/EndFrame")
	}
	if !p.opts.Rasterization && !p.opts.Wireframe {
		return
	}
	if res == nil {
		res = &defaultResources
	}

	if bounded, ok := mesh.(BoundedMeshRenderer); ok {
		p.stats.MeshesTested++
		mn, mx := bounded.GetBounds()
		world := AABB{Min: mn, Max: mx}.Transform(transform)
		if !p.frustum.IntersectsAABB(world) {
			p.stats.MeshesCulled++
			return
		}
		p.stats.MeshesDrawn++
	}

	p.ctx.Model = transform
	p.ctx.NormalMatrix = transform.Inverse().Transpose()
	tangents, hasTangents := mesh.(TangentMeshRenderer)
	baseColor := math3d.V4(res.BaseColor[0], res.BaseColor[1], res.BaseColor[2], res.BaseColor[3])

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		var tri Triangle
		for j, vi := range face {
			pos, normal, uv := mesh.GetVertex(vi)
			in := VertexIn{Position: pos, Normal: normal, UV: uv, Color: baseColor}
			if hasTangents {
				in.Tangent, in.Bitangent = tangents.GetTangent(vi)
			}
			tri.V[j] = shader.Vertex(&p.ctx, in)
		}
		p.processTriangle(tri, shader, res)
	}
}

// processTriangle applies winding normalization, face culling and
// near-plane clipping, then hands surviving triangles to scan conversion.
func (p *Pipeline) processTriangle(tri Triangle, shader Shader, res *Resources) {
	p.stats.Triangles++

	if p.opts.Winding == WindingClockwise {
		tri.V[1], tri.V[2] = tri.V[2], tri.V[1]
	}

	if p.opts.Cull != CullNone {
		// Facing is judged in projection space: the face normal from the
		// raw edge vectors against the vector toward the projected camera
		// origin. Front faces give a negative dot; zero (edge-on) counts
		// as back-facing.
		a := tri.V[0].Position.Vec3()
		e1 := tri.V[1].Position.Vec3().Sub(a)
		e2 := tri.V[2].Position.Vec3().Sub(a)
		facing := e1.Cross(e2).Dot(p.projOrigin.Sub(a))
		if p.opts.Cull == CullBack && facing >= 0 {
			p.stats.TrianglesCulled++
			return
		}
		if p.opts.Cull == CullFront && facing < 0 {
			p.stats.TrianglesCulled++
			return
		}
	}

	clipped, n := clipNear(tri)
	if n == 0 {
		p.stats.TrianglesClipped++
		return
	}
	for k := 0; k < n; k++ {
		p.rasterizeTriangle(p.fb, clipped[k], shader, res)
	}
}
