package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/retouch/internal/clipboard"
	"github.com/example/retouch/internal/editor"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/theme"
)

const messageDuration = 2 * time.Second

// AppState holds the editor window configuration.
type AppState struct {
	Session *editor.Session
	Theme   *theme.Theme

	copyFn   func(ctx context.Context, locator string) (string, error)
	onCopied func(what string)
	onSaved  func(editor.SaveResult)

	leaveMu sync.Mutex
	leave   func()

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithCopyListener is called after the saved photo was copied to the
// clipboard.
func WithCopyListener(fn func(what string)) Option { return func(a *AppState) { a.onCopied = fn } }

// WithSaveListener is called with every finished save.
func WithSaveListener(fn func(editor.SaveResult)) Option { return func(a *AppState) { a.onSaved = fn } }

// WithOnClose is called once when the window goes away.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState for the given session.
func New(s *editor.Session, opts ...Option) *AppState {
	a := &AppState{
		Session: s,
		Theme:   theme.Default(),
		copyFn:  clipboard.CopyArtifact,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Leave closes the window from any goroutine. It is a no-op before the window
// opened.
func (a *AppState) Leave() {
	a.leaveMu.Lock()
	fn := a.leave
	a.leaveMu.Unlock()
	if fn != nil {
		fn()
	}
}

func (a *AppState) setLeave(fn func()) {
	a.leaveMu.Lock()
	a.leave = fn
	a.leaveMu.Unlock()
}

func (a *AppState) notifyClose() {
	a.Session.Detach()
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

type saveDoneEvent struct{ result editor.SaveResult }

type copyDoneEvent struct {
	what string
	err  error
}

type leaveEvent struct{}

// controller holds the window's interaction state. Its methods run on the
// event loop goroutine only.
type controller struct {
	app  *AppState
	send func(any)

	selected     Param
	message      string
	warn         bool
	messageUntil time.Time
	lastSaved    string
	quit         bool

	actions map[string]func()
	keys    map[KeyShortcut]string
}

func newController(a *AppState, send func(any)) *controller {
	c := &controller{
		app:     a,
		send:    send,
		actions: map[string]func(){},
		keys:    map[KeyShortcut]string{},
	}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		c.actions[name] = fn
		for _, sc := range keys.KeyboardShortcuts() {
			c.keys[sc] = name
		}
	}
	register("brightness", shortcutList{{Code: key.Code1}}, func() { c.selected = ParamBrightness })
	register("saturation", shortcutList{{Code: key.Code2}}, func() { c.selected = ParamSaturation })
	register("contrast", shortcutList{{Code: key.Code3}}, func() { c.selected = ParamContrast })
	register("increase", shortcutList{{Code: key.CodeUpArrow}, {Code: key.CodeRightArrow}}, func() { c.nudge(filter.Step) })
	register("decrease", shortcutList{{Code: key.CodeDownArrow}, {Code: key.CodeLeftArrow}}, func() { c.nudge(-filter.Step) })
	register("pen", shortcutList{{Code: key.CodeP}}, func() {
		a.Session.Surface().Toggle()
	})
	register("clear", shortcutList{{Code: key.CodeX}}, a.Session.ClearAnnotations)
	register("reset", shortcutList{{Code: key.CodeR}}, a.Session.ResetFilters)
	register("save", shortcutList{{Code: key.CodeS, Modifiers: key.ModControl}}, c.save)
	register("copy", shortcutList{{Code: key.CodeC, Modifiers: key.ModControl}}, c.copy)
	register("quit", shortcutList{{Code: key.CodeQ}, {Code: key.CodeEscape}}, func() { c.quit = true })
	return c
}

// trigger runs the named action.
func (c *controller) trigger(name string) bool {
	fn, ok := c.actions[name]
	if ok {
		fn()
	}
	return ok
}

// handleKey runs the action bound to the key combination, if any.
func (c *controller) handleKey(code key.Code, mods key.Modifiers) bool {
	name, ok := c.keys[KeyShortcut{Code: code, Modifiers: mods}]
	if !ok {
		return false
	}
	return c.trigger(name)
}

func (c *controller) nudge(delta float64) {
	switch c.selected {
	case ParamBrightness:
		c.app.Session.Adjust(delta, 0, 0)
	case ParamSaturation:
		c.app.Session.Adjust(0, delta, 0)
	case ParamContrast:
		c.app.Session.Adjust(0, 0, delta)
	}
}

func (c *controller) flash(msg string, warn bool) {
	c.message = msg
	c.warn = warn
	c.messageUntil = time.Now().Add(messageDuration)
}

func (c *controller) save() {
	if c.app.Session.Saving() {
		c.flash("Save already in progress", true)
		return
	}
	ch := c.app.Session.SaveAsync(context.Background())
	go func() {
		r := <-ch
		c.send(saveDoneEvent{result: r})
	}()
}

func (c *controller) saveDone(r editor.SaveResult) {
	if r.Err != nil {
		var se *editor.SaveError
		switch {
		case errors.Is(r.Err, editor.ErrSaveInProgress):
			c.flash("Save already in progress", true)
		case errors.As(r.Err, &se):
			c.flash("Save failed: "+se.Kind.String(), true)
		default:
			c.flash("Save failed", true)
		}
	} else {
		c.lastSaved = r.Photo.Locator
		c.flash("Saved "+r.Photo.DisplayName, false)
	}
	if c.app.onSaved != nil {
		c.app.onSaved(r)
	}
}

func (c *controller) copy() {
	locator := c.lastSaved
	if locator == "" {
		c.flash("Save the photo before copying", true)
		return
	}
	go func() {
		what, err := c.app.copyFn(context.Background(), locator)
		c.send(copyDoneEvent{what: what, err: err})
	}()
}

func (c *controller) copyDone(e copyDoneEvent) {
	if e.err != nil {
		logrus.WithError(e.err).Warn("Copy to clipboard failed")
		c.flash("Copy failed", true)
		return
	}
	c.flash(fmt.Sprintf("Copied %s to clipboard", e.what), false)
	if c.app.onCopied != nil {
		c.app.onCopied(e.what)
	}
}

func (c *controller) paintState(width, height, hover int) paintState {
	p := c.app.Session.Photo()
	return paintState{
		width:        width,
		height:       height,
		title:        p.DisplayName,
		params:       c.app.Session.Params(),
		selected:     c.selected,
		annotating:   c.app.Session.Annotating(),
		saving:       c.app.Session.Saving(),
		message:      c.message,
		warn:         c.warn,
		messageUntil: c.messageUntil,
		hover:        hover,
	}
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the window until it is closed or Leave is called.
func (a *AppState) Main(s screen.Screen) {
	defer a.notifyClose()

	photoSize := a.Session.Layout().Size()
	ws := windowSize(photoSize)
	width, height := ws.X, ws.Y
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Retouch: " + a.Session.Photo().DisplayName})
	if err != nil {
		logrus.WithError(err).Error("new window")
		return
	}
	defer w.Release()

	a.setLeave(func() { w.Send(leaveEvent{}) })
	defer a.setLeave(nil)

	c := newController(a, w.Send)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, a.Theme, st, a.Session.Render)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	hover := -1
	pressed := false

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case leaveEvent:
			return
		case saveDoneEvent:
			c.saveDone(e.result)
			w.Send(paint.Event{})
		case copyDoneEvent:
			c.copyDone(e)
			w.Send(paint.Event{})
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := c.paintState(width, height, hover)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			if p.Y >= height-bottomHeight {
				hover = -1
				for i, sc := range layoutShortcuts(height) {
					if p.In(sc.rect) {
						hover = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							c.trigger(sc.Action)
						}
						break
					}
				}
				w.Send(paint.Event{})
				if c.quit {
					return
				}
				continue
			}
			if hover != -1 {
				hover = -1
				w.Send(paint.Event{})
			}
			card := cardRect(width, height, photoSize)
			pt := toCanvas(card, e.X, e.Y)
			surface := a.Session.Surface()
			switch {
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				if p.In(card) {
					pressed = true
					surface.ContactStart(pt)
				}
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				if pressed {
					pressed = false
					surface.ContactEnd()
				}
			case e.Direction == mouse.DirNone && pressed:
				surface.ContactMove(pt)
			default:
				continue
			}
			w.Send(paint.Event{})
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if c.handleKey(e.Code, e.Modifiers) {
				if c.quit {
					return
				}
				w.Send(paint.Event{})
			}
		case error:
			logrus.WithError(e).Error("window event")
		}
	}
}
