// Package filter builds the composite color transform applied to a photo while
// it is being edited.
package filter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Parameter ranges accepted by the editor.
const (
	MinBrightness = 0.0
	MaxBrightness = 2.0
	MinSaturation = 0.0
	MaxSaturation = 2.0
	MinContrast   = 0.5
	MaxContrast   = 2.0

	// Step is the increment used by slider style controls.
	Step = 0.1
)

// Parameters holds the three independent adjustments. 1.0 on every axis is the
// identity.
type Parameters struct {
	Brightness float64
	Saturation float64
	Contrast   float64
}

// Identity returns parameters that leave the image unchanged.
func Identity() Parameters {
	return Parameters{Brightness: 1, Saturation: 1, Contrast: 1}
}

// Clamp returns p with every value forced into its accepted range.
func (p Parameters) Clamp() Parameters {
	return Parameters{
		Brightness: clamp(p.Brightness, MinBrightness, MaxBrightness),
		Saturation: clamp(p.Saturation, MinSaturation, MaxSaturation),
		Contrast:   clamp(p.Contrast, MinContrast, MaxContrast),
	}
}

// String formats the parameters as percentages the way the editor shows them.
func (p Parameters) String() string {
	return fmt.Sprintf("brightness %d%% saturation %d%% contrast %d%%",
		int(math.Round(p.Brightness*100)), int(math.Round(p.Saturation*100)), int(math.Round(p.Contrast*100)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Build composes brightness, then saturation, then contrast into one matrix.
// The order matters: the steps do not commute.
func Build(p Parameters) Matrix {
	return Brightness(p.Brightness).Then(Saturation(p.Saturation)).Then(Contrast(p.Contrast))
}

// ApplyImage runs src through m and returns the filtered copy. Channels are
// clamped when written.
func ApplyImage(src image.Image, m Matrix) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	if m.IsIdentity() {
		return dst
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst.Pix[(y-b.Min.Y)*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			px := row[x*4 : x*4+4 : x*4+4]
			out := m.Apply(color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
			px[0], px[1], px[2], px[3] = out.R, out.G, out.B, out.A
		}
	}
	return dst
}
