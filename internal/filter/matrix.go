package filter

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Luminance weights used by the saturation matrix.
const (
	lumR = 0.213
	lumG = 0.715
	lumB = 0.072
)

// Matrix is a 4x5 affine color matrix in row-major order. Rows produce R, G, B
// and A; columns weigh the input R, G, B, A and add a constant offset. Channels
// are normalized to [0, 1].
type Matrix [20]float64

// IdentityMatrix leaves colors untouched.
func IdentityMatrix() Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness scales R, G and B by b.
func Brightness(b float64) Matrix {
	return Matrix{
		b, 0, 0, 0, 0,
		0, b, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Saturation returns the luminance-weighted saturation matrix. s=0 is
// grayscale and s=1 the identity.
func Saturation(s float64) Matrix {
	return Matrix{
		lumR + (1-lumR)*s, lumG - lumG*s, lumB - lumB*s, 0, 0,
		lumR - lumR*s, lumG + (1-lumG)*s, lumB - lumB*s, 0, 0,
		lumR - lumR*s, lumG - lumG*s, lumB + (1-lumB)*s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales R, G and B around mid-gray.
func Contrast(c float64) Matrix {
	t := 0.5 * (1 - c)
	return Matrix{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix equivalent to applying m followed by n.
func (m Matrix) Then(n Matrix) Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += n[r*5+k] * m[k*5+c]
			}
			if c == 4 {
				sum += n[r*5+4]
			}
			out[r*5+c] = sum
		}
	}
	return out
}

// Transform applies m to normalized channel values without clamping.
func (m Matrix) Transform(r, g, b, a float64) (float64, float64, float64, float64) {
	in := [4]float64{r, g, b, a}
	var out [4]float64
	for row := 0; row < 4; row++ {
		sum := m[row*5+4]
		for k := 0; k < 4; k++ {
			sum += m[row*5+k] * in[k]
		}
		out[row] = sum
	}
	return out[0], out[1], out[2], out[3]
}

// Apply transforms a non-premultiplied color. Each channel is clamped to the
// valid range only when converted back to 8 bits.
func (m Matrix) Apply(c color.NRGBA) color.NRGBA {
	r, g, b, a := m.Transform(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: to8(a)}
}

// IsIdentity reports whether m is the identity within a small tolerance.
func (m Matrix) IsIdentity() bool {
	id := IdentityMatrix()
	for i := range m {
		if math.Abs(m[i]-id[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// String renders the matrix as four rows.
func (m Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < 4; r++ {
		if r > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%7.4f %7.4f %7.4f %7.4f %7.4f", m[r*5], m[r*5+1], m[r*5+2], m[r*5+3], m[r*5+4])
	}
	return sb.String()
}

func to8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
