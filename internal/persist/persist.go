// Package persist copies captured frames into the documents directory.
package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/imagesrc"
)

var (
	// ErrSourceMissing is returned when the captured file is gone before it
	// could be copied.
	ErrSourceMissing = errors.New("source file does not exist")
	// ErrWriteFailed wraps filesystem errors while writing the artifact.
	ErrWriteFailed = errors.New("write failed")
)

// Filename returns the destination name for an edited copy of originalName:
// edited_<originalName>_<unix millis>.jpg. Path separators in the name are
// replaced so the result is always a single path element.
func Filename(originalName string, now time.Time) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(originalName)
	if name == "" {
		name = "photo"
	}
	return fmt.Sprintf("edited_%s_%d.jpg", name, now.UnixMilli())
}

// Copy copies the file behind sourceLocator to dir/filename and returns the
// file:// locator of the copy. The source is left in place.
func Copy(sourceLocator, dir, filename string) (string, error) {
	src, err := imagesrc.LocalPath(sourceLocator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}
	info, err := os.Stat(src)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrWriteFailed, dir, err)
	}
	dst := filepath.Join(dir, filename)
	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	logrus.WithFields(logrus.Fields{"source": src, "destination": dst}).Info("Image saved")
	return imagesrc.FileLocator(dst), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

// Remove deletes the local file behind locator. A missing file is not an
// error.
func Remove(locator string) error {
	path, err := imagesrc.LocalPath(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DefaultDocumentsDir returns $XDG_DATA_HOME/retouch/documents, falling back
// to ~/.local/share.
func DefaultDocumentsDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "retouch", "documents")
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "retouch", "documents")
}
