// Package appstate hosts an editor session in a desktop window.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/retouch/internal/annotate"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/render"
	"github.com/example/retouch/internal/theme"
)

const (
	titleHeight  = 24
	meterHeight  = 20
	panelHeight  = 3*meterHeight + 24
	bottomHeight = 24
	margin       = 24
	minWidth     = 420
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		logrus.WithError(err).Fatal("parse font")
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		logrus.WithError(err).Fatal("font face")
	}
}

// Param selects which adjustment the arrow keys change.
type Param int

const (
	ParamBrightness Param = iota
	ParamSaturation
	ParamContrast
)

func (p Param) String() string {
	switch p {
	case ParamSaturation:
		return "Saturation"
	case ParamContrast:
		return "Contrast"
	}
	return "Brightness"
}

func (p Param) value(ps filter.Parameters) (v, lo, hi float64) {
	switch p {
	case ParamSaturation:
		return ps.Saturation, filter.MinSaturation, filter.MaxSaturation
	case ParamContrast:
		return ps.Contrast, filter.MinContrast, filter.MaxContrast
	}
	return ps.Brightness, filter.MinBrightness, filter.MaxBrightness
}

func (p Param) track(t *theme.Theme) color.RGBA {
	switch p {
	case ParamSaturation:
		return t.SaturationTrack
	case ParamContrast:
		return t.ContrastTrack
	}
	return t.BrightnessTrack
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// Shortcut is a clickable label in the bottom bar.
type Shortcut struct {
	Label  string
	Action string
	rect   image.Rectangle
}

// bottomBar lists the actions shown as buttons, left to right.
var bottomBar = []Shortcut{
	{Label: "^S Save", Action: "save"},
	{Label: "P Pen", Action: "pen"},
	{Label: "X Clear", Action: "clear"},
	{Label: "R Reset", Action: "reset"},
	{Label: "^C Copy", Action: "copy"},
	{Label: "Q Quit", Action: "quit"},
}

// layoutShortcuts positions the bottom bar buttons for a window of the given
// height.
func layoutShortcuts(height int) []Shortcut {
	d := &font.Drawer{Face: basicfont.Face7x13}
	out := make([]Shortcut, len(bottomBar))
	x := 4
	for i, sc := range bottomBar {
		w := d.MeasureString(sc.Label).Ceil() + 8
		sc.rect = image.Rect(x, height-bottomHeight+2, x+w, height-2)
		out[i] = sc
		x += w + 4
	}
	return out
}

// windowSize returns the initial window size for a photo shown at size.
func windowSize(size image.Point) image.Point {
	w := size.X + 2*margin
	if w < minWidth {
		w = minWidth
	}
	h := titleHeight + size.Y + 2*margin + panelHeight + bottomHeight
	return image.Pt(w, h)
}

// cardRect centers a card of the given size in the photo area of the window.
func cardRect(width, height int, size image.Point) image.Rectangle {
	areaTop := titleHeight
	areaH := height - titleHeight - panelHeight - bottomHeight
	x0 := (width - size.X) / 2
	y0 := areaTop + (areaH-size.Y)/2
	if y0 < areaTop {
		y0 = areaTop
	}
	return image.Rect(x0, y0, x0+size.X, y0+size.Y)
}

// toCanvas converts window coordinates into canvas coordinates.
func toCanvas(card image.Rectangle, x, y float32) annotate.Point {
	return annotate.Point{X: float64(x) - float64(card.Min.X), Y: float64(y) - float64(card.Min.Y)}
}

type paintState struct {
	width        int
	height       int
	title        string
	frame        image.Image
	params       filter.Parameters
	selected     Param
	annotating   bool
	saving       bool
	message      string
	warn         bool
	messageUntil time.Time
	hover        int
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, th *theme.Theme, st paintState, renderFn func(context.Context) (image.Image, error)) {
	frame, err := renderFn(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Render skipped")
		return
	}
	st.frame = frame
	if ctx.Err() != nil {
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		logrus.WithError(err).Error("new buffer")
		return
	}
	defer b.Release()

	paintWindow(b.RGBA(), th, st)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// paintWindow draws one complete frame of the editor into dst.
func paintWindow(dst *image.RGBA, th *theme.Theme, st paintState) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)

	drawText(dst, th.Foreground, 8, 17, st.title)

	if st.frame != nil {
		card := cardRect(st.width, st.height, st.frame.Bounds().Size())
		render.PaintCardShadow(dst, card, render.DefaultShadowOptions())
		draw.Draw(dst, card.Inset(-1), &image.Uniform{th.CardBorder}, image.Point{}, draw.Src)
		draw.Draw(dst, card, st.frame, st.frame.Bounds().Min, draw.Src)
	}

	drawPanel(dst, th, st)
	drawShortcuts(dst, th, st)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, th, st)
	}
}

func drawPanel(dst *image.RGBA, th *theme.Theme, st paintState) {
	top := st.height - panelHeight - bottomHeight
	panel := image.Rect(0, top, st.width, st.height-bottomHeight)
	draw.Draw(dst, panel, &image.Uniform{th.Panel}, image.Point{}, draw.Src)

	for i, p := range []Param{ParamBrightness, ParamSaturation, ParamContrast} {
		y := top + 4 + i*meterHeight
		v, lo, hi := p.value(st.params)
		label := fmt.Sprintf("%-10s %3.0f%%", p, v*100)
		col := th.PanelText
		if p == st.selected {
			col = th.Accent
			label = "> " + label
		} else {
			label = "  " + label
		}
		drawText(dst, col, 8, y+13, label)

		track := image.Rect(150, y+6, st.width-16, y+12)
		if track.Dx() <= 0 {
			continue
		}
		draw.Draw(dst, track, &image.Uniform{th.Track}, image.Point{}, draw.Src)
		filled := track
		filled.Max.X = track.Min.X + int(float64(track.Dx())*(v-lo)/(hi-lo))
		draw.Draw(dst, filled, &image.Uniform{p.track(th)}, image.Point{}, draw.Src)
	}

	status := "Pen off"
	if st.annotating {
		status = "Pen on"
	}
	if st.saving {
		status += "   Saving..."
	}
	drawText(dst, th.Muted, 8, top+3*meterHeight+17, status)
}

func drawShortcuts(dst *image.RGBA, th *theme.Theme, st paintState) {
	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{th.Panel}, image.Point{}, draw.Src)
	for i, sc := range layoutShortcuts(st.height) {
		bg := th.Card
		if i == st.hover {
			bg = th.Track
		}
		draw.Draw(dst, sc.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
		drawText(dst, th.PanelText, sc.rect.Min.X+4, sc.rect.Min.Y+14, sc.Label)
	}
}

func drawMessage(dst *image.RGBA, th *theme.Theme, st paintState) {
	col := th.Foreground
	if st.warn {
		col = th.Warning
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: messageFace}
	wmsg := d.MeasureString(st.message).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (st.width - wmsg) / 2
	py := (st.height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	bg := th.Card
	bg.A = 230
	draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Over)
	d.Dot = fixed.P(px, py)
	d.DrawString(st.message)
}

func drawText(dst *image.RGBA, col color.Color, x, y int, s string) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}
