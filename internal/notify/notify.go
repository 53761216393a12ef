// Package notify shows dismissable notices when an edit is saved, a save
// fails or an image is copied.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/platform"
)

// Event identifies a notice trigger.
type Event string

const (
	// EventSave fires when an edited photo has been written and published.
	EventSave Event = "save"
	// EventFailure fires when a save attempt fails.
	EventFailure Event = "failure"
	// EventCopy fires when the saved image is copied to the clipboard.
	EventCopy Event = "copy"
)

// Events lists every event in display order.
func Events() []Event { return []Event{EventSave, EventFailure, EventCopy} }

// EventPreference describes formatting for one event. Template receives the
// event detail through a single %s verb.
type EventPreference struct {
	Title    string
	Template string
}

// Preferences describes notice behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the built-in notice texts.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Events: map[Event]EventPreference{
			EventSave:    {Title: "Saved", Template: "The edited photo was saved as %s"},
			EventFailure: {Title: "Save failed", Template: "The edited photo could not be saved: %s"},
			EventCopy:    {Title: "Copied", Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences applies RETOUCH_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("RETOUCH_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, event := range Events() {
		key := "RETOUCH_NOTIFY_" + strings.ToUpper(string(event)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			p := prefs.Events[event]
			p.Template = v
			prefs.Events[event] = p
		}
	}
	return prefs
}

// Seam replaced in tests.
var sendFn = platform.Notify

// Notifier sends host notices for enabled events. A nil Notifier is silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event produces notices.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Saved announces a saved artifact. The file itself is used as the icon.
func (n *Notifier) Saved(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	opts := platform.Options{Urgency: platform.UrgencyNormal}
	detail := filepath.Base(path)
	if _, err := os.Stat(path); err == nil {
		opts.IconPath = path
	}
	n.dispatch(EventSave, detail, opts)
}

// Failed announces a failed save. reason should be short and user facing.
func (n *Notifier) Failed(reason string) {
	if !n.Enabled(EventFailure) {
		return
	}
	n.dispatch(EventFailure, reason, platform.Options{Urgency: platform.UrgencyCritical})
}

// Copied announces a clipboard copy.
func (n *Notifier) Copied(detail string) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{Urgency: platform.UrgencyLow})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	pref := n.prefs.Events[event]
	template := strings.TrimSpace(pref.Template)
	if template == "" {
		return
	}
	body := template
	if strings.Contains(template, "%s") {
		body = fmt.Sprintf(template, strings.TrimSpace(detail))
	}
	title := n.prefs.Title
	if pref.Title != "" {
		title = title + ": " + pref.Title
	}
	if err := sendFn(title, strings.TrimSpace(body), opts); err != nil {
		logrus.WithField("event", string(event)).WithError(err).Warn("Notification not delivered")
	}
}
