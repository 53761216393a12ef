package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow painted under the photo card in
// the editor window.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns a soft shadow suited to the editor backdrop.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  12,
		Offset:  image.Pt(6, 8),
		Opacity: 0.45,
	}
}

// PaintCardShadow paints a blurred rectangular shadow for card onto dst,
// clipped to dst. The card itself is not drawn.
func PaintCardShadow(dst *image.RGBA, card image.Rectangle, opts ShadowOptions) {
	if dst == nil || card.Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}
	area := card.Add(opts.Offset).Inset(-radius)
	mask := image.NewAlpha(area)
	solid := card.Add(opts.Offset)
	draw.Draw(mask, solid, image.Opaque, image.Point{}, draw.Src)
	boxBlur(mask, radius)

	alpha := uint8(opacity*255 + 0.5)
	draw.DrawMask(dst, area.Intersect(dst.Bounds()), image.NewUniform(color.RGBA{A: alpha}), image.Point{},
		mask, area.Intersect(dst.Bounds()).Min, draw.Over)
}

// boxBlur runs a horizontal then a vertical running-sum box filter over m in
// place. Samples past the edge count as transparent.
func boxBlur(m *image.Alpha, radius int) {
	if radius <= 0 {
		return
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	window := 2*radius + 1
	line := make([]int, max(w, h))

	blurLine := func(get func(i int) uint8, set func(i int, v uint8), n int) {
		for i := 0; i < n; i++ {
			line[i] = int(get(i))
		}
		sum := 0
		for i := 0; i < radius && i < n; i++ {
			sum += line[i]
		}
		for i := 0; i < n; i++ {
			if j := i + radius; j < n {
				sum += line[j]
			}
			if j := i - radius - 1; j >= 0 {
				sum -= line[j]
			}
			set(i, uint8(sum/window))
		}
	}

	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		blurLine(func(i int) uint8 { return row[i] }, func(i int, v uint8) { row[i] = v }, w)
	}
	for x := 0; x < w; x++ {
		blurLine(func(i int) uint8 { return m.Pix[i*m.Stride+x] }, func(i int, v uint8) { m.Pix[i*m.Stride+x] = v }, h)
	}
}
