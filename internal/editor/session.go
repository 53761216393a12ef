// Package editor holds one photo editing session: the color adjustments, the
// annotation canvas and the save pipeline that publishes the result.
package editor

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/annotate"
	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/imagesrc"
	"github.com/example/retouch/internal/layout"
	"github.com/example/retouch/internal/nav"
	"github.com/example/retouch/internal/persist"
	"github.com/example/retouch/internal/photo"
	"github.com/example/retouch/internal/render"
)

// Notifier receives save outcomes for the user.
type Notifier interface {
	Saved(path string)
	Failed(reason string)
}

// Session is the state of one open editor screen. It is safe for concurrent
// use; saves run while the host keeps delivering input.
type Session struct {
	mu         sync.Mutex
	photo      photo.Photo
	base       image.Image
	layout     layout.DisplayLayout
	params     filter.Parameters
	style      render.StrokeStyle
	attached   bool
	resetToken uint64
	snapshot   string

	canvas  *annotate.Canvas
	surface *annotate.Surface

	saving atomic.Bool

	store     photo.Store
	navigator nav.Navigator
	notifier  Notifier
	capturer  capture.Capturer
	now       func() time.Time
	docsDir   string
	onStrokes func(snapshot string)
}

// Option configures a Session.
type Option func(*Session)

// WithStore sets the photo store the saved result is published to.
func WithStore(s photo.Store) Option { return func(e *Session) { e.store = s } }

// WithNavigator sets the navigation shell reset after a successful save.
func WithNavigator(n nav.Navigator) Option { return func(e *Session) { e.navigator = n } }

// WithNotifier sets where save outcomes are announced.
func WithNotifier(n Notifier) Option { return func(e *Session) { e.notifier = n } }

// WithCapturer replaces the capturer that snapshots the rendered frame.
func WithCapturer(c capture.Capturer) Option { return func(e *Session) { e.capturer = c } }

// WithClock replaces time.Now for destination file names.
func WithClock(now func() time.Time) Option { return func(e *Session) { e.now = now } }

// WithDocumentsDir sets the directory saved artifacts are copied into.
func WithDocumentsDir(dir string) Option { return func(e *Session) { e.docsDir = dir } }

// WithStrokeStyle sets the annotation pen.
func WithStrokeStyle(st render.StrokeStyle) Option { return func(e *Session) { e.style = st } }

// WithParams sets the initial filter parameters.
func WithParams(p filter.Parameters) Option { return func(e *Session) { e.params = p.Clamp() } }

// WithAnnotationListener is called with the serialized strokes whenever the
// annotation changes.
func WithAnnotationListener(fn func(snapshot string)) Option {
	return func(e *Session) { e.onStrokes = fn }
}

// New starts a session for p showing base at the given layout.
func New(p photo.Photo, base image.Image, l layout.DisplayLayout, opts ...Option) *Session {
	s := &Session{
		photo:    p,
		base:     base,
		layout:   l,
		params:   filter.Identity(),
		style:    render.DefaultStrokeStyle(),
		attached: true,
		snapshot: "[]",
		canvas:   annotate.NewCanvas(),
		capturer: capture.FileCapturer{},
		now:      time.Now,
		docsDir:  persist.DefaultDocumentsDir(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = photo.NewSeededMemoryStore()
	}
	s.surface = annotate.NewSurface(s.canvas)
	s.canvas.OnChange(s.strokesChanged)
	return s
}

// Open decodes the photo behind p.Locator and fits it into a
// maxWidth x maxHeight box.
func Open(ctx context.Context, p photo.Photo, maxWidth, maxHeight float64, opts ...Option) (*Session, error) {
	l, err := layout.Probe(ctx, imagesrc.Default, p.Locator, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	img, _, err := imagesrc.Decode(ctx, p.Locator)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.ID, err)
	}
	logrus.WithFields(logrus.Fields{
		"photo_id": p.ID,
		"width":    l.Width,
		"height":   l.Height,
	}).Debug("Editor session opened")
	return New(p, img, l, opts...), nil
}

func (s *Session) strokesChanged(snapshot string) {
	s.mu.Lock()
	s.snapshot = snapshot
	fn := s.onStrokes
	s.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// Photo returns the photo being edited. After a successful save its locator
// points at the saved artifact.
func (s *Session) Photo() photo.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}

// Layout returns the display size of the photo.
func (s *Session) Layout() layout.DisplayLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Params returns the current filter parameters.
func (s *Session) Params() filter.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the filter parameters, clamped to their ranges.
func (s *Session) SetParams(p filter.Parameters) filter.Parameters {
	p = p.Clamp()
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return p
}

// Adjust nudges the parameters by the given deltas.
func (s *Session) Adjust(brightness, saturation, contrast float64) filter.Parameters {
	s.mu.Lock()
	p := filter.Parameters{
		Brightness: roundStep(s.params.Brightness + brightness),
		Saturation: roundStep(s.params.Saturation + saturation),
		Contrast:   roundStep(s.params.Contrast + contrast),
	}.Clamp()
	s.params = p
	s.mu.Unlock()
	return p
}

// roundStep snaps v to the slider grid so repeated nudges do not drift.
func roundStep(v float64) float64 {
	const scale = 1 / filter.Step
	return math.Round(v*scale) / scale
}

// ResetFilters restores the identity parameters.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	s.params = filter.Identity()
	s.mu.Unlock()
}

// ClearAnnotations issues a new reset token to the canvas, removing every
// stroke.
func (s *Session) ClearAnnotations() {
	s.mu.Lock()
	s.resetToken++
	token := s.resetToken
	s.mu.Unlock()
	s.canvas.Reset(token)
}

// Matrix returns the composite color matrix for the current parameters.
func (s *Session) Matrix() filter.Matrix {
	return filter.Build(s.Params())
}

// Canvas returns the annotation canvas.
func (s *Session) Canvas() *annotate.Canvas { return s.canvas }

// Surface returns the gated input surface over the canvas.
func (s *Session) Surface() *annotate.Surface { return s.surface }

// SetAnnotating enables or disables drawing.
func (s *Session) SetAnnotating(on bool) { s.surface.SetEnabled(on) }

// Annotating reports whether drawing is enabled.
func (s *Session) Annotating() bool { return s.surface.Enabled() }

// AnnotationSnapshot returns the most recent serialized strokes.
func (s *Session) AnnotationSnapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Attached reports whether the session still has a live render target.
func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Detach drops the render target, e.g. when the host window goes away. Saves
// fail with NoRenderTarget afterwards.
func (s *Session) Detach() {
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
}

// Close ends the session.
func (s *Session) Close() { s.Detach() }

// Render composites the current frame. It implements capture.Target.
func (s *Session) Render(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	if !s.attached || s.base == nil {
		s.mu.Unlock()
		return nil, capture.ErrNoTarget
	}
	scene := render.Scene{
		Layout: s.layout,
		Matrix: filter.Build(s.params),
		Style:  s.style,
	}
	base := s.base
	s.mu.Unlock()
	scene.Strokes = s.canvas.Scene()
	return render.Compose(base, scene), nil
}
