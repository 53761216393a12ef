// Package render composites a photo, its color filter and its annotation
// strokes into a single raster.
package render

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/example/retouch/internal/annotate"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/layout"
)

// StrokeStyle describes how annotation strokes are painted.
type StrokeStyle struct {
	Color color.RGBA
	Width float64
}

// DefaultStrokeStyle paints 3px black strokes.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Color: color.RGBA{A: 255}, Width: 3}
}

// Scene is everything Compose needs to produce one frame.
type Scene struct {
	Layout     layout.DisplayLayout
	Matrix     filter.Matrix
	Strokes    []annotate.Stroke
	Style      StrokeStyle
	Background color.Color
}

// Compose scales base to the scene layout, runs it through the color matrix
// and paints the strokes on top. base is not modified. Strokes sit above the
// filter and are not tinted by it.
func Compose(base image.Image, sc Scene) *image.RGBA {
	size := sc.Layout.Size()
	rect := image.Rect(0, 0, size.X, size.Y)

	scaled := Scale(base, size)
	filtered := filter.ApplyImage(scaled, sc.Matrix)

	out := image.NewRGBA(rect)
	bg := sc.Background
	if bg == nil {
		bg = color.White
	}
	xdraw.Draw(out, rect, image.NewUniform(bg), image.Point{}, xdraw.Src)
	xdraw.Draw(out, rect, filtered, filtered.Bounds().Min, xdraw.Over)

	style := sc.Style
	if style.Width <= 0 {
		style = DefaultStrokeStyle()
	}
	for _, s := range sc.Strokes {
		DrawStroke(out, s, style)
	}
	return out
}

// Scale resamples src to size with Catmull-Rom filtering.
func Scale(src image.Image, size image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	if src == nil || src.Bounds().Empty() {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// DrawStroke paints s onto dst with anti-aliased edges, round joins and
// round caps.
func DrawStroke(dst *image.RGBA, s annotate.Stroke, style StrokeStyle) {
	pts := s.Points()
	if len(pts) == 0 || style.Width <= 0 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := style.Width / 2
	off := annotate.Point{X: float64(b.Min.X), Y: float64(b.Min.Y)}
	for i, p := range pts {
		p = annotate.Point{X: p.X - off.X, Y: p.Y - off.Y}
		addDisc(z, p, half)
		if i == 0 {
			continue
		}
		prev := annotate.Point{X: pts[i-1].X - off.X, Y: pts[i-1].Y - off.Y}
		addSegment(z, prev, p, half)
	}
	z.Draw(dst, b, image.NewUniform(style.Color), image.Point{})
}

// The rasterizer accumulates signed area, so every sub-path is wound the same
// way to keep overlaps from cancelling.

func addSegment(z *vector.Rasterizer, a, b annotate.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
}

func addDisc(z *vector.Rasterizer, c annotate.Point, r float64) {
	n := int(math.Ceil(r * 4))
	if n < 12 {
		n = 12
	}
	for i := 0; i <= n; i++ {
		t := -2 * math.Pi * float64(i) / float64(n)
		x := float32(c.X + r*math.Cos(t))
		y := float32(c.Y + r*math.Sin(t))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}
