package render

// HDRColor is a linear-space RGB color with unbounded channel values.
// Shading and frame composition accumulate light in this format; tone
// mapping compresses it to displayable range at the end of the frame.
type HDRColor struct {
	R, G, B float64
}

// HDR creates an HDRColor from linear channel values.
func HDR(r, g, b float64) HDRColor {
	return HDRColor{R: r, G: g, B: b}
}

// Add returns the channel-wise sum of two colors.
func (c HDRColor) Add(o HDRColor) HDRColor {
	return HDRColor{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the channel-wise product of two colors.
func (c HDRColor) Mul(o HDRColor) HDRColor {
	return HDRColor{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale returns the color with every channel multiplied by s.
func (c HDRColor) Scale(s float64) HDRColor {
	return HDRColor{c.R * s, c.G * s, c.B * s}
}

// Lerp linearly interpolates between c and o by t.
func (c HDRColor) Lerp(o HDRColor, t float64) HDRColor {
	return HDRColor{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
	}
}

// MaxChannel returns the largest of the three channel values.
func (c HDRColor) MaxChannel() float64 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}
