// Package capture snapshots a render target into a temporary raster file.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/imagesrc"
)

// ErrNoTarget is returned when there is nothing to capture.
var ErrNoTarget = errors.New("no render target")

// Target produces the composited frame to capture.
type Target interface {
	Render(ctx context.Context) (image.Image, error)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(ctx context.Context) (image.Image, error)

// Render calls f.
func (f TargetFunc) Render(ctx context.Context) (image.Image, error) { return f(ctx) }

// Capturer writes a snapshot of a target and returns a locator for it.
type Capturer interface {
	Capture(ctx context.Context, t Target) (string, error)
}

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// Seams replaced in tests.
var (
	encodeJPEG = func(w io.Writer, img image.Image, o *jpeg.Options) error { return jpeg.Encode(w, img, o) }
	createTemp = os.CreateTemp
)

// FileCapturer encodes captures as JPEG files in Dir, or the system temp
// directory when Dir is empty.
type FileCapturer struct {
	Dir     string
	Quality int
}

// Capture renders t and writes it to a new temporary file. The returned
// locator is a file:// URI. On failure no file is left behind.
func (c FileCapturer) Capture(ctx context.Context, t Target) (string, error) {
	if t == nil {
		return "", ErrNoTarget
	}
	img, err := t.Render(ctx)
	if err != nil {
		return "", fmt.Errorf("render target: %w", err)
	}
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("render target: empty frame")
	}
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return "", fmt.Errorf("create capture dir: %w", err)
		}
	}
	f, err := createTemp(c.Dir, "retouch-capture-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	path := f.Name()
	quality := c.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if err := encodeJPEG(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode capture: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close capture file: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"path":   path,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("Render target captured")
	return imagesrc.FileLocator(path), nil
}
