package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/retouch/internal/theme"
)

// Store backends accepted by the store key.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Notify holds notification settings.
type Notify struct {
	Save    bool
	Failure bool
	Copy    bool
}

// Editor holds editor window and rendering settings.
type Editor struct {
	BoxWidth    float64
	BoxHeight   float64
	StrokeColor string
	StrokeWidth float64
	JPEGQuality int
}

// Config holds the application configuration.
type Config struct {
	Theme     string
	SaveDir   string
	TempDir   string
	Store     string
	StorePath string
	Notify    Notify
	Editor    Editor
	Themes    map[string]*theme.Theme
}

// DefaultEditor returns the editor settings used when none are configured.
func DefaultEditor() Editor {
	return Editor{
		BoxWidth:    300,
		BoxHeight:   400,
		StrokeColor: "black",
		StrokeWidth: 3,
		JPEGQuality: 90,
	}
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Store: StoreMemory,
		Notify: Notify{
			Save:    true,
			Failure: true,
		},
		Editor: DefaultEditor(),
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	root := []struct{ key, value string }{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"temp_dir", c.TempDir},
		{"store", c.Store},
		{"store_path", c.StorePath},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "box_width = %g\n", c.Editor.BoxWidth)
	fmt.Fprintf(&sb, "box_height = %g\n", c.Editor.BoxHeight)
	fmt.Fprintf(&sb, "stroke_color = %s\n", c.Editor.StrokeColor)
	fmt.Fprintf(&sb, "stroke_width = %g\n", c.Editor.StrokeWidth)
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.Editor.JPEGQuality)
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Format(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Store {
	case "", StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Editor.BoxWidth <= 0 || c.Editor.BoxHeight <= 0 {
		return fmt.Errorf("editor box must be positive, got %gx%g", c.Editor.BoxWidth, c.Editor.BoxHeight)
	}
	if c.Editor.StrokeWidth <= 0 {
		return fmt.Errorf("stroke_width must be positive")
	}
	if c.Editor.JPEGQuality < 1 || c.Editor.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be within 1..100, got %d", c.Editor.JPEGQuality)
	}
	return nil
}
