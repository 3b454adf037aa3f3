package render

// clipNear clips one triangle against the near plane. In projection space
// the near plane sits at z = 0, so a vertex is behind it exactly when its
// z is negative. Returns 0, 1 or 2 well-formed triangles in out; this is
// the only stage that changes the triangle count.
//
// The case analysis rotates vertices cyclically so winding is preserved
// in every output.
func clipNear(tri Triangle) (out [2]Triangle, n int) {
	b0 := tri.V[0].Position.Z < 0
	b1 := tri.V[1].Position.Z < 0
	b2 := tri.V[2].Position.Z < 0

	switch {
	case !b0 && !b1 && !b2:
		out[0] = tri
		return out, 1
	case b0 && b1 && b2:
		return out, 0
	case b0 && !b1 && !b2:
		return clipOneBehind(tri.V[0], tri.V[1], tri.V[2])
	case b1 && !b0 && !b2:
		return clipOneBehind(tri.V[1], tri.V[2], tri.V[0])
	case b2 && !b0 && !b1:
		return clipOneBehind(tri.V[2], tri.V[0], tri.V[1])
	case b0 && b1:
		return clipTwoBehind(tri.V[0], tri.V[1], tri.V[2])
	case b1 && b2:
		return clipTwoBehind(tri.V[1], tri.V[2], tri.V[0])
	default: // b2 && b0
		return clipTwoBehind(tri.V[2], tri.V[0], tri.V[1])
	}
}

// nearIntersect returns the vertex where the edge from a to b crosses the
// near plane. Every attribute is carried through the interpolation, not
// just position.
func nearIntersect(a, b VertexOut) VertexOut {
	t := -a.Position.Z / (b.Position.Z - a.Position.Z)
	return a.Lerp(b, t)
}

// clipOneBehind handles the single-vertex case: a is behind, b and c are
// in front. The clipped region is the quad (ab, b, c, ac), emitted as two
// triangles sharing the ab vertex.
func clipOneBehind(a, b, c VertexOut) (out [2]Triangle, n int) {
	ab := nearIntersect(a, b)
	ac := nearIntersect(a, c)
	out[0] = Triangle{V: [3]VertexOut{ab, b, c}}
	out[1] = Triangle{V: [3]VertexOut{ab, c, ac}}
	return out, 2
}

// clipTwoBehind handles the two-vertex case: a and b are behind, c is in
// front. The clipped region is the triangle bounded by the two edge
// intersections and c.
func clipTwoBehind(a, b, c VertexOut) (out [2]Triangle, n int) {
	ac := nearIntersect(a, c)
	bc := nearIntersect(b, c)
	out[0] = Triangle{V: [3]VertexOut{ac, bc, c}}
	return out, 1
}
