// Package layout sizes an image inside a display box while keeping its aspect
// ratio.
package layout

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrInvalidDimension reports a non-positive or non-finite layout input.
var ErrInvalidDimension = errors.New("invalid dimension")

// DisplayLayout is the on-screen size of an image.
type DisplayLayout struct {
	Width  float64
	Height float64
}

// Size rounds the layout to whole pixels. Both dimensions are at least one.
func (l DisplayLayout) Size() image.Point {
	w := int(math.Round(l.Width))
	h := int(math.Round(l.Height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h)
}

// Aspect returns width divided by height.
func (l DisplayLayout) Aspect() float64 {
	if l.Height == 0 {
		return 0
	}
	return l.Width / l.Height
}

// Compute fits an intrinsicWidth x intrinsicHeight source inside a
// maxWidth x maxHeight box. The result touches the box on one side; the other
// side is scaled by the source aspect ratio.
func Compute(intrinsicWidth, intrinsicHeight, maxWidth, maxHeight float64) (DisplayLayout, error) {
	for _, v := range []float64{intrinsicWidth, intrinsicHeight, maxWidth, maxHeight} {
		if !(v > 0) || math.IsInf(v, 0) {
			return DisplayLayout{}, fmt.Errorf("compute layout %gx%g in %gx%g: %w",
				intrinsicWidth, intrinsicHeight, maxWidth, maxHeight, ErrInvalidDimension)
		}
	}
	aspect := intrinsicWidth / intrinsicHeight
	w := maxWidth
	h := maxWidth / aspect
	if h > maxHeight {
		h = maxHeight
		w = maxHeight * aspect
	}
	return DisplayLayout{Width: w, Height: h}, nil
}

// Prober reports the intrinsic pixel size of the image behind a locator.
type Prober interface {
	Dimensions(ctx context.Context, locator string) (width, height int, err error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, locator string) (int, int, error)

// Dimensions calls f.
func (f ProberFunc) Dimensions(ctx context.Context, locator string) (int, int, error) {
	return f(ctx, locator)
}

// Probe measures the source behind locator and fits it into the box. When the
// probe fails the source is treated as square so the caller always gets a
// usable layout. An invalid box is still reported as an error.
func Probe(ctx context.Context, p Prober, locator string, maxWidth, maxHeight float64) (DisplayLayout, error) {
	log := logrus.WithField("locator", locator)
	iw, ih, err := p.Dimensions(ctx, locator)
	if err == nil {
		l, lerr := Compute(float64(iw), float64(ih), maxWidth, maxHeight)
		if lerr == nil {
			return l, nil
		}
		err = lerr
	}
	log.WithError(err).Warn("Probe failed, assuming square source")
	return Compute(1, 1, maxWidth, maxHeight)
}
