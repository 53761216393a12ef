package theme

import (
	"image/color"
	"sort"
	"strings"
)

// Theme defines the colors of the editor window.
type Theme struct {
	Name string

	// Window
	Background color.RGBA // Backdrop behind the photo card
	Foreground color.RGBA // Primary text
	Muted      color.RGBA // Secondary text and hints

	// Photo card
	Card       color.RGBA
	CardBorder color.RGBA

	// Status panel
	Panel     color.RGBA
	PanelText color.RGBA
	Accent    color.RGBA // Active mode indicator
	Warning   color.RGBA // Failure messages

	// Parameter meters
	Track           color.RGBA
	BrightnessTrack color.RGBA
	SaturationTrack color.RGBA
	ContrastTrack   color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:            "Default",
		Background:      color.RGBA{236, 236, 240, 255},
		Foreground:      color.RGBA{28, 28, 30, 255},
		Muted:           color.RGBA{120, 120, 128, 255},
		Card:            color.RGBA{255, 255, 255, 255},
		CardBorder:      color.RGBA{210, 210, 215, 255},
		Panel:           color.RGBA{248, 248, 250, 255},
		PanelText:       color.RGBA{28, 28, 30, 255},
		Accent:          color.RGBA{0, 122, 255, 255},
		Warning:         color.RGBA{255, 59, 48, 255},
		Track:           color.RGBA{221, 221, 221, 255},
		BrightnessTrack: color.RGBA{0, 122, 255, 255},
		SaturationTrack: color.RGBA{52, 199, 89, 255},
		ContrastTrack:   color.RGBA{255, 149, 0, 255},
	}
}

// Dark returns the built-in dark theme.
func Dark() *Theme {
	t := Default()
	t.Name = "Dark"
	t.Background = color.RGBA{28, 28, 30, 255}
	t.Foreground = color.RGBA{242, 242, 247, 255}
	t.Muted = color.RGBA{142, 142, 147, 255}
	t.Card = color.RGBA{44, 44, 46, 255}
	t.CardBorder = color.RGBA{58, 58, 60, 255}
	t.Panel = color.RGBA{36, 36, 38, 255}
	t.PanelText = color.RGBA{242, 242, 247, 255}
	t.Accent = color.RGBA{10, 132, 255, 255}
	t.Warning = color.RGBA{255, 69, 58, 255}
	t.Track = color.RGBA{72, 72, 74, 255}
	return t
}

var builtin = map[string]func() *Theme{
	"default": Default,
	"light":   Default,
	"dark":    Dark,
}

// Builtin returns the named built-in theme.
func Builtin(name string) (*Theme, bool) {
	fn, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// BuiltinNames lists the names accepted by Builtin.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
