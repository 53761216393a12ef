// Package clipboard places saved photos on the system clipboard.
package clipboard

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/imagesrc"
)

// What CopyArtifact placed on the clipboard.
const (
	CopiedImage = "image"
	CopiedPath  = "path"
)

var (
	writeImageFn = WriteImage
	writeTextFn  = WriteText
)

// CopyArtifact places the image behind locator on the clipboard. If the image
// cannot be published, its local path is copied as text instead. The result
// names what was copied.
func CopyArtifact(ctx context.Context, locator string) (string, error) {
	log := logrus.WithField("locator", locator)
	img, _, err := imagesrc.Decode(ctx, locator)
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", locator, err)
	}
	imgErr := writeImageFn(img)
	if imgErr == nil {
		log.Debug("Image copied to clipboard")
		return CopiedImage, nil
	}
	path, err := imagesrc.LocalPath(locator)
	if err != nil {
		return "", fmt.Errorf("copy image: %w", imgErr)
	}
	if err := writeTextFn(path); err != nil {
		return "", fmt.Errorf("copy image: %w", imgErr)
	}
	log.WithError(imgErr).Warn("Image copy failed, copied path instead")
	return CopiedPath, nil
}
