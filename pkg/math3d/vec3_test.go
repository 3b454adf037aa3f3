package math3d

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"x cross y", V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{"y cross z", V3(0, 1, 0), V3(0, 0, 1), V3(1, 0, 0)},
		{"z cross x", V3(0, 0, 1), V3(1, 0, 0), V3(0, 1, 0)},
		{"anticommutative", V3(0, 1, 0), V3(1, 0, 0), V3(0, 0, -1)},
		{"parallel", V3(2, 4, 6), V3(1, 2, 3), V3(0, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Cross(tc.b)
			if got != tc.expected {
				t.Errorf("Cross = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestVec3CrossOrthogonal(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(-4, 5, 0.5)
	c := a.Cross(b)

	if d := math.Abs(c.Dot(a)); d > 1e-12 {
		t.Errorf("cross product not orthogonal to a, dot = %v", d)
	}
	if d := math.Abs(c.Dot(b)); d > 1e-12 {
		t.Errorf("cross product not orthogonal to b, dot = %v", d)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := V3(3, 4, 0).Normalize()
	if v != V3(0.6, 0.8, 0) {
		t.Errorf("Normalize = %v, want (0.6, 0.8, 0)", v)
	}

	if l := v.Len(); math.Abs(l-1) > 1e-12 {
		t.Errorf("normalized length = %v, want 1", l)
	}

	// The zero vector has no direction and stays zero.
	if z := Zero3().Normalize(); z != Zero3() {
		t.Errorf("Normalize(zero) = %v, want zero", z)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := V3(0, 10, -2)
	b := V3(4, 0, 2)

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	if got := a.Lerp(b, 0.5); got != V3(2, 5, 0) {
		t.Errorf("Lerp(0.5) = %v, want (2, 5, 0)", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := V3(1, 5, -3)
	b := V3(2, -4, -3)

	if got := a.Min(b); got != V3(1, -4, -3) {
		t.Errorf("Min = %v, want (1, -4, -3)", got)
	}
	if got := a.Max(b); got != V3(2, 5, -3) {
		t.Errorf("Max = %v, want (2, 5, -3)", got)
	}
}

func TestVec3LenSq(t *testing.T) {
	v := V3(1, 2, 2)
	if got := v.LenSq(); got != 9 {
		t.Errorf("LenSq = %v, want 9", got)
	}
	if got := v.Len(); got != 3 {
		t.Errorf("Len = %v, want 3", got)
	}
}
