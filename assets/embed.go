package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Bundled sample photos shipped with Retouch.
//
//go:embed photos/*.png
var embeddedPhotos embed.FS

var (
	loadPhotosOnce sync.Once
	loadPhotosErr  error

	photoData   = map[string][]byte{}
	photoConfig = map[string]image.Config{}
)

func loadPhotos() {
	entries, err := fs.ReadDir(embeddedPhotos, "photos")
	if err != nil {
		loadPhotosErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".png") {
			continue
		}
		data, err := embeddedPhotos.ReadFile(path.Join("photos", name))
		if err != nil {
			loadPhotosErr = err
			return
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			loadPhotosErr = fmt.Errorf("bundled photo %s: %w", name, err)
			return
		}
		photoData[name] = data
		photoConfig[name] = cfg
	}
}

func ensurePhotos() error {
	loadPhotosOnce.Do(loadPhotos)
	return loadPhotosErr
}

// ReadFile returns a copy of the raw bytes of a bundled photo, e.g. "apple.png".
func ReadFile(name string) ([]byte, error) {
	if err := ensurePhotos(); err != nil {
		return nil, err
	}
	data, ok := photoData[name]
	if !ok {
		return nil, fmt.Errorf("bundled photo %q not found", name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Config returns the dimensions and color model of a bundled photo without
// decoding its pixels.
func Config(name string) (image.Config, error) {
	if err := ensurePhotos(); err != nil {
		return image.Config{}, err
	}
	cfg, ok := photoConfig[name]
	if !ok {
		return image.Config{}, fmt.Errorf("bundled photo %q not found", name)
	}
	return cfg, nil
}

// Names lists the bundled photos in name order.
func Names() []string {
	if err := ensurePhotos(); err != nil {
		return nil
	}
	names := make([]string, 0, len(photoData))
	for name := range photoData {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
