package math3d

import (
	"math"
	"testing"
)

// TestPerspectiveZODepthRange verifies the zero-to-one projection maps the
// near plane to clip z=0, the far plane to clip z=w, and anything closer
// than near to negative clip z. The near-plane clipper depends on exactly
// this sign convention.
func TestPerspectiveZODepthRange(t *testing.T) {
	tests := []struct {
		name      string
		near, far float64
	}{
		{"default clip range", 0.1, 1000},
		{"tight clip range", 1, 101},
		{"distant near plane", 10, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj := PerspectiveZO(math.Pi/3, 16.0/9.0, tt.near, tt.far)

			atNear := proj.MulVec4(V4(0, 0, -tt.near, 1))
			if math.Abs(atNear.Z) > 1e-9 {
				t.Errorf("Expected clip z=0 at the near plane, got %g", atNear.Z)
			}
			if math.Abs(atNear.W-tt.near) > 1e-12 {
				t.Errorf("Expected clip w=%g at the near plane, got %g", tt.near, atNear.W)
			}

			atFar := proj.MulVec4(V4(0, 0, -tt.far, 1))
			if math.Abs(atFar.Z/atFar.W-1) > 1e-12 {
				t.Errorf("Expected clip z=w at the far plane, got z/w=%g", atFar.Z/atFar.W)
			}

			behind := proj.MulVec4(V4(0, 0, -tt.near/2, 1))
			if behind.Z >= 0 {
				t.Errorf("Expected negative clip z in front of the near plane, got %g", behind.Z)
			}

			// Clip w is the view-space distance along the forward axis.
			off := proj.MulVec4(V4(3, -2, -7*tt.near, 1))
			if math.Abs(off.W-7*tt.near) > 1e-12 {
				t.Errorf("Expected clip w=%g, got %g", 7*tt.near, off.W)
			}
		})
	}
}

// TestPerspectiveZODepthMonotonic verifies normalized depth grows strictly
// with view distance between the clip planes.
func TestPerspectiveZODepthMonotonic(t *testing.T) {
	proj := PerspectiveZO(math.Pi/2, 1, 1, 100)

	prev := -1.0
	for _, dist := range []float64{1, 2, 5, 10, 30, 60, 100} {
		clip := proj.MulVec4(V4(0, 0, -dist, 1))
		ndc := clip.Z / clip.W
		if ndc <= prev {
			t.Errorf("Depth not monotonic at distance %g: %g <= %g", dist, ndc, prev)
		}
		if ndc < -1e-12 || ndc > 1+1e-12 {
			t.Errorf("Depth out of [0,1] at distance %g: %g", dist, ndc)
		}
		prev = ndc
	}
}

// TestPerspectiveZOInverse verifies the projection is invertible.
func TestPerspectiveZOInverse(t *testing.T) {
	proj := PerspectiveZO(math.Pi/3, 16.0/9.0, 0.1, 1000)
	round := proj.Inverse().Mul(proj)

	ident := Identity()
	for i := range 16 {
		if math.Abs(round[i]-ident[i]) > 1e-9 {
			t.Errorf("Element %d: Expected %g, got %g", i, ident[i], round[i])
		}
	}
}
