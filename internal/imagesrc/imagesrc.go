// Package imagesrc resolves photo locators to image data.
package imagesrc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/retouch/assets"
)

// Locator prefixes understood by Open.
const (
	AssetScheme = "asset:"
	FileScheme  = "file://"
)

// Kind classifies a locator.
type Kind int

const (
	KindPath Kind = iota
	KindAsset
	KindFile
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindFile:
		return "file"
	case KindRemote:
		return "remote"
	}
	return "path"
}

// Classify reports how a locator will be resolved.
func Classify(locator string) Kind {
	switch {
	case strings.HasPrefix(locator, AssetScheme):
		return KindAsset
	case strings.HasPrefix(locator, FileScheme):
		return KindFile
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return KindRemote
	}
	return KindPath
}

// FileLocator returns the file:// locator for a filesystem path.
func FileLocator(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return FileScheme + filepath.ToSlash(abs)
}

// LocalPath strips a file:// prefix. Bare paths are returned unchanged. It
// fails for asset and remote locators.
func LocalPath(locator string) (string, error) {
	switch Classify(locator) {
	case KindFile:
		p := strings.TrimPrefix(locator, FileScheme)
		if p == "" {
			return "", fmt.Errorf("empty file locator")
		}
		return filepath.FromSlash(p), nil
	case KindPath:
		if locator == "" {
			return "", fmt.Errorf("empty locator")
		}
		return locator, nil
	}
	return "", fmt.Errorf("locator %q is not a local file", locator)
}

// DisplayName derives a human readable name from a locator, without extension.
func DisplayName(locator string) string {
	name := locator
	switch Classify(locator) {
	case KindAsset:
		name = strings.TrimPrefix(locator, AssetScheme)
	case KindRemote:
		if u, err := url.Parse(locator); err == nil {
			name = u.Path
		}
	case KindFile:
		if p, err := LocalPath(locator); err == nil {
			name = p
		}
	}
	name = filepath.Base(filepath.FromSlash(name))
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "photo"
	}
	return name
}

// Resolver opens locators. The zero value uses http.DefaultClient for remote
// sources.
type Resolver struct {
	Client *http.Client
}

// Default is the resolver used by the package level helpers.
var Default = &Resolver{Client: &http.Client{Timeout: 30 * time.Second}}

// Open returns a reader for the bytes behind locator.
func (r *Resolver) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	switch Classify(locator) {
	case KindAsset:
		data, err := assets.ReadFile(strings.TrimPrefix(locator, AssetScheme))
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case KindRemote:
		return r.openRemote(ctx, locator)
	}
	path, err := LocalPath(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", locator, err)
	}
	return f, nil
}

func (r *Resolver) openRemote(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", locator, err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", locator, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", locator, resp.Status)
	}
	return resp.Body, nil
}

// Decode loads and decodes the full image behind locator.
func (r *Resolver) Decode(ctx context.Context, locator string) (image.Image, string, error) {
	rc, err := r.Open(ctx, locator)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", locator, err)
	}
	return img, format, nil
}

// Dimensions reads only the image header to report its intrinsic size.
func (r *Resolver) Dimensions(ctx context.Context, locator string) (int, int, error) {
	if Classify(locator) == KindAsset {
		cfg, err := assets.Config(strings.TrimPrefix(locator, AssetScheme))
		if err != nil {
			return 0, 0, err
		}
		return cfg.Width, cfg.Height, nil
	}
	rc, err := r.Open(ctx, locator)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()
	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", locator, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode uses the Default resolver.
func Decode(ctx context.Context, locator string) (image.Image, string, error) {
	return Default.Decode(ctx, locator)
}

// Dimensions uses the Default resolver.
func Dimensions(ctx context.Context, locator string) (int, int, error) {
	return Default.Dimensions(ctx, locator)
}
