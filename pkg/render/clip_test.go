package render

import (
	"math"
	"testing"

	"github.com/charcoal3d/charcoal/pkg/math3d"
)

// clipVert builds a projection-space vertex at the given z with a marker
// U coordinate so attribute interpolation can be checked after clipping.
func clipVert(x, y, z, u float64) VertexOut {
	return VertexOut{
		Position: math3d.V4(x, y, z, 1),
		UV:       math3d.V2(u, 0),
		Depth:    z + 1,
	}
}

func clipTri(v0, v1, v2 VertexOut) Triangle {
	return Triangle{V: [3]VertexOut{v0, v1, v2}}
}

// signedArea2D gives twice the signed area of the triangle projected
// onto the XY plane. Positive means counter-clockwise.
func signedArea2D(t Triangle) float64 {
	ax, ay := t.V[0].Position.X, t.V[0].Position.Y
	bx, by := t.V[1].Position.X, t.V[1].Position.Y
	cx, cy := t.V[2].Position.X, t.V[2].Position.Y
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

func TestClipNearCounts(t *testing.T) {
	tests := []struct {
		name string
		tri  Triangle
		want int
	}{
		{
			name: "all in front",
			tri:  clipTri(clipVert(0, 0, 1, 0), clipVert(1, 0, 2, 0), clipVert(0, 1, 3, 0)),
			want: 1,
		},
		{
			name: "all behind",
			tri:  clipTri(clipVert(0, 0, -1, 0), clipVert(1, 0, -2, 0), clipVert(0, 1, -3, 0)),
			want: 0,
		},
		{
			name: "first behind",
			tri:  clipTri(clipVert(0, 0, -1, 0), clipVert(1, 0, 1, 0), clipVert(0, 1, 1, 0)),
			want: 2,
		},
		{
			name: "second behind",
			tri:  clipTri(clipVert(0, 0, 1, 0), clipVert(1, 0, -1, 0), clipVert(0, 1, 1, 0)),
			want: 2,
		},
		{
			name: "third behind",
			tri:  clipTri(clipVert(0, 0, 1, 0), clipVert(1, 0, 1, 0), clipVert(0, 1, -1, 0)),
			want: 2,
		},
		{
			name: "first two behind",
			tri:  clipTri(clipVert(0, 0, -1, 0), clipVert(1, 0, -1, 0), clipVert(0, 1, 1, 0)),
			want: 1,
		},
		{
			name: "last two behind",
			tri:  clipTri(clipVert(0, 0, 1, 0), clipVert(1, 0, -1, 0), clipVert(0, 1, -1, 0)),
			want: 1,
		},
		{
			name: "first and last behind",
			tri:  clipTri(clipVert(0, 0, -1, 0), clipVert(1, 0, 1, 0), clipVert(0, 1, -1, 0)),
			want: 1,
		},
		{
			name: "vertex exactly on plane",
			tri:  clipTri(clipVert(0, 0, 0, 0), clipVert(1, 0, 1, 0), clipVert(0, 1, 1, 0)),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := clipNear(tt.tri)
			if n != tt.want {
				t.Errorf("clipNear returned %d triangles, want %d", n, tt.want)
			}
			for i := range n {
				for j, v := range out[i].V {
					if v.Position.Z < -1e-12 {
						t.Errorf("output triangle %d vertex %d has z=%g behind the near plane", i, j, v.Position.Z)
					}
				}
			}
		})
	}
}

// TestClipNearUnclippedPassthrough verifies that a fully visible triangle
// comes back untouched rather than rebuilt.
func TestClipNearUnclippedPassthrough(t *testing.T) {
	tri := clipTri(clipVert(-1, 0, 0.5, 0.1), clipVert(1, 0, 1.5, 0.7), clipVert(0, 1, 2.5, 0.9))
	out, n := clipNear(tri)
	if n != 1 {
		t.Fatalf("clipNear returned %d triangles, want 1", n)
	}
	if out[0] != tri {
		t.Errorf("fully visible triangle was modified by clipping")
	}
}

// TestClipNearIntersection checks that the intersection vertices land on
// the plane and carry correctly interpolated attributes. The behind
// vertex sits at z=-1 and both front vertices at z=1, so each crossing
// happens at t=0.5.
func TestClipNearIntersection(t *testing.T) {
	a := clipVert(0, 0, -1, 0)  // behind
	b := clipVert(2, 0, 1, 1)   // in front
	c := clipVert(0, 2, 1, 0.5) // in front
	out, n := clipNear(clipTri(a, b, c))
	if n != 2 {
		t.Fatalf("clipNear returned %d triangles, want 2", n)
	}

	// First output is (ab, b, c), second is (ab, c, ac).
	ab := out[0].V[0]
	ac := out[1].V[2]

	if math.Abs(ab.Position.Z) > 1e-12 {
		t.Errorf("ab intersection z = %g, want 0", ab.Position.Z)
	}
	if math.Abs(ac.Position.Z) > 1e-12 {
		t.Errorf("ac intersection z = %g, want 0", ac.Position.Z)
	}
	if got, want := ab.Position.X, 1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("ab intersection x = %g, want %g", got, want)
	}
	if got, want := ab.UV.X, 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("ab interpolated u = %g, want %g", got, want)
	}
	if got, want := ac.UV.X, 0.25; math.Abs(got-want) > 1e-12 {
		t.Errorf("ac interpolated u = %g, want %g", got, want)
	}
	if got, want := ab.Depth, a.Depth+(b.Depth-a.Depth)*0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("ab interpolated depth = %g, want %g", got, want)
	}

	if out[0].V[1] != b || out[0].V[2] != c || out[1].V[1] != c {
		t.Errorf("surviving vertices were modified by clipping")
	}
}

// TestClipNearWinding verifies that clipping never flips orientation,
// whichever vertex ends up behind the plane.
func TestClipNearWinding(t *testing.T) {
	// Counter-clockwise in XY.
	front := [3]VertexOut{
		clipVert(-1, -1, 1, 0),
		clipVert(1, -1, 1, 0),
		clipVert(0, 1, 1, 0),
	}

	for behind := range 3 {
		for _, twoBehind := range []bool{false, true} {
			tri := clipTri(front[0], front[1], front[2])
			tri.V[behind].Position.Z = -1
			if twoBehind {
				tri.V[(behind+1)%3].Position.Z = -1
			}

			out, n := clipNear(tri)
			if n == 0 {
				t.Fatalf("behind=%d twoBehind=%v: no output triangles", behind, twoBehind)
			}
			for i := range n {
				if area := signedArea2D(out[i]); area <= 0 {
					t.Errorf("behind=%d twoBehind=%v: output %d has signed area %g, winding flipped",
						behind, twoBehind, i, area)
				}
			}
		}
	}
}

// TestClipNearSharedEdge verifies that the two triangles produced by the
// one-behind case share the ab intersection vertex exactly, so the quad
// they form has no crack.
func TestClipNearSharedEdge(t *testing.T) {
	a := clipVert(0, 0, -2, 0)
	b := clipVert(3, 0, 1, 1)
	c := clipVert(0, 3, 4, 0.5)
	out, n := clipNear(clipTri(a, b, c))
	if n != 2 {
		t.Fatalf("clipNear returned %d triangles, want 2", n)
	}
	if out[0].V[0] != out[1].V[0] {
		t.Errorf("quad split does not share the ab vertex: %+v vs %+v",
			out[0].V[0].Position, out[1].V[0].Position)
	}
	if out[0].V[2] != out[1].V[1] {
		t.Errorf("quad split does not share the c vertex")
	}
}
