package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m := Translate(V3(1, 2, 3))
	n := RotateY(0.5)

	for b.Loop() {
		_ = m.Mul(n)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

// BenchmarkMat4MulVec3 times both sides of the homogeneous-divide
// check: affine transforms skip it, projections pay for it.
func BenchmarkMat4MulVec3(b *testing.B) {
	v := V3(1, 2, -3)

	b.Run("affine", func(b *testing.B) {
		m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
		for b.Loop() {
			_ = m.MulVec3(v)
		}
	})

	b.Run("projective", func(b *testing.B) {
		m := PerspectiveZO(math.Pi/3, 1.333, 0.1, 100)
		for b.Loop() {
			_ = m.MulVec3(v)
		}
	})
}

func BenchmarkMat4MulVec3Dir(b *testing.B) {
	m := RotateY(0.5).Mul(Scale(V3(2, 2, 2)))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3Dir(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 1, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(3, -1, 2)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v := V3(3, -1, 2)
	w := V3(-2, 4, 1)

	for b.Loop() {
		_ = v.Cross(w)
	}
}

func BenchmarkVec3Dot(b *testing.B) {
	v := V3(3, -1, 2)
	w := V3(-2, 4, 1)

	for b.Loop() {
		_ = v.Dot(w)
	}
}

func BenchmarkVec3Lerp(b *testing.B) {
	v := V3(3, -1, 2)
	w := V3(-2, 4, 1)

	for b.Loop() {
		_ = v.Lerp(w, 0.35)
	}
}

func BenchmarkPerspectiveZO(b *testing.B) {
	for b.Loop() {
		_ = PerspectiveZO(math.Pi/3, 1.333, 0.1, 100.0)
	}
}

func BenchmarkLookAt(b *testing.B) {
	eye := V3(0, 2, 10)
	target := Zero3()
	up := Up()

	for b.Loop() {
		_ = LookAt(eye, target, up)
	}
}

// BenchmarkViewProjection times the matrix product every frame pays in
// BeginFrame.
func BenchmarkViewProjection(b *testing.B) {
	view := LookAt(V3(0, 2, 10), Zero3(), Up())
	proj := PerspectiveZO(math.Pi/3, 1.333, 0.1, 100.0)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}
