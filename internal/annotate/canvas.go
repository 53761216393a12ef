// Package annotate records freehand strokes drawn over a photo.
package annotate

import "sync"

// State is the gesture state of a Canvas.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Canvas turns contact events into an ordered list of strokes. Rendering is a
// pure function of Scene; the canvas keeps no raster of its own.
type Canvas struct {
	mu        sync.Mutex
	state     State
	strokes   []Stroke
	active    Stroke
	lastToken uint64
	onChange  func(snapshot string)
}

// NewCanvas returns an empty canvas in the Idle state.
func NewCanvas() *Canvas {
	return &Canvas{}
}

// OnChange registers fn to receive a serialized snapshot of all finalized
// strokes whenever a stroke is added or the canvas is reset.
func (c *Canvas) OnChange(fn func(snapshot string)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// ContactStart begins a new stroke at p. A stroke still in progress is
// finalized first.
func (c *Canvas) ContactStart(p Point) {
	c.mu.Lock()
	var notify func()
	if c.state == Drawing {
		notify = c.finishLocked()
	}
	c.active = NewStroke(p)
	c.state = Drawing
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// ContactMove extends the active stroke. It is ignored while Idle so a drag
// that began outside the surface cannot corrupt state.
func (c *Canvas) ContactMove(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drawing {
		return
	}
	c.active = c.active.lineTo(p)
}

// ContactEnd finalizes the active stroke and notifies the host.
func (c *Canvas) ContactEnd() {
	c.mu.Lock()
	if c.state != Drawing {
		c.mu.Unlock()
		return
	}
	notify := c.finishLocked()
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func (c *Canvas) finishLocked() func() {
	c.state = Idle
	stroke := c.active
	c.active = Stroke{}
	if stroke.Empty() {
		return nil
	}
	c.strokes = append(c.strokes, stroke)
	return c.notifier(EncodeSnapshot(c.strokes))
}

// Reset clears every stroke when token is greater than the last applied
// token. Repeated or older tokens are ignored. It reports whether the canvas
// was cleared.
func (c *Canvas) Reset(token uint64) bool {
	c.mu.Lock()
	if token <= c.lastToken {
		c.mu.Unlock()
		return false
	}
	c.lastToken = token
	c.strokes = nil
	c.active = Stroke{}
	c.state = Idle
	notify := c.notifier(EncodeSnapshot(nil))
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
	return true
}

func (c *Canvas) notifier(snapshot string) func() {
	fn := c.onChange
	if fn == nil {
		return nil
	}
	return func() { fn(snapshot) }
}

// LastToken returns the most recent reset token applied.
func (c *Canvas) LastToken() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastToken
}

// State returns the current gesture state.
func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Strokes returns the finalized strokes in drawing order.
func (c *Canvas) Strokes() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stroke, len(c.strokes))
	copy(out, c.strokes)
	return out
}

// Active returns the stroke in progress, if any.
func (c *Canvas) Active() (Stroke, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.state == Drawing && !c.active.Empty()
}

// Scene returns everything that should be painted: the finalized strokes
// followed by the active stroke.
func (c *Canvas) Scene() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stroke, 0, len(c.strokes)+1)
	out = append(out, c.strokes...)
	if c.state == Drawing && !c.active.Empty() {
		out = append(out, c.active)
	}
	return out
}

// Snapshot serializes the finalized strokes.
func (c *Canvas) Snapshot() string {
	return EncodeSnapshot(c.Strokes())
}

// Load appends previously serialized strokes, for example when replaying a
// session.
func (c *Canvas) Load(strokes []Stroke) {
	c.mu.Lock()
	c.strokes = append(c.strokes, strokes...)
	c.mu.Unlock()
}

// Surface gates contact delivery to a Canvas. While disabled, events never
// reach the canvas, so existing strokes are kept and new ones are not started.
type Surface struct {
	mu      sync.Mutex
	canvas  *Canvas
	enabled bool
}

// NewSurface wraps c. The surface starts disabled.
func NewSurface(c *Canvas) *Surface {
	return &Surface{canvas: c}
}

// Canvas returns the wrapped canvas.
func (s *Surface) Canvas() *Canvas { return s.canvas }

// SetEnabled toggles whether contact events are delivered.
func (s *Surface) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// Toggle flips the enabled flag and returns the new value.
func (s *Surface) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = !s.enabled
	return s.enabled
}

// Enabled reports whether contact events are delivered.
func (s *Surface) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Surface) deliver(fn func(*Canvas)) {
	if s.Enabled() {
		fn(s.canvas)
	}
}

// ContactStart forwards to the canvas when enabled.
func (s *Surface) ContactStart(p Point) { s.deliver(func(c *Canvas) { c.ContactStart(p) }) }

// ContactMove forwards to the canvas when enabled.
func (s *Surface) ContactMove(p Point) { s.deliver(func(c *Canvas) { c.ContactMove(p) }) }

// ContactEnd forwards to the canvas when enabled.
func (s *Surface) ContactEnd() { s.deliver(func(c *Canvas) { c.ContactEnd() }) }
