package notify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/retouch/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func captureSends(t *testing.T, err error) *[]sent {
	t.Helper()
	var got []sent
	original := sendFn
	sendFn = func(title, body string, opts platform.Options) error {
		got = append(got, sent{title, body, opts})
		return err
	}
	t.Cleanup(func() { sendFn = original })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := captureSends(t, nil)
	n := New(DefaultPreferences())
	n.Saved("/tmp/a.jpg")
	n.Failed("disk full")
	n.Copied("")
	var nilNotifier *Notifier
	nilNotifier.Failed("x")
	if len(*got) != 0 {
		t.Fatalf("expected no notices, got %+v", *got)
	}
}

func TestSavedUsesFileAsIcon(t *testing.T) {
	got := captureSends(t, nil)
	path := filepath.Join(t.TempDir(), "edited_apple.png_1.jpg")
	os.WriteFile(path, []byte("x"), 0o644)

	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Saved(path)
	if len(*got) != 1 {
		t.Fatalf("expected one notice, got %d", len(*got))
	}
	s := (*got)[0]
	if s.title != "Retouch: Saved" || s.body != "The edited photo was saved as edited_apple.png_1.jpg" {
		t.Fatalf("unexpected notice %+v", s)
	}
	if s.opts.IconPath != path {
		t.Fatalf("icon = %q", s.opts.IconPath)
	}
}

func TestFailedIsCritical(t *testing.T) {
	got := captureSends(t, errors.New("no bus"))
	n := New(DefaultPreferences())
	n.Enable(EventFailure, true)
	n.Failed("source missing")
	if len(*got) != 1 || (*got)[0].opts.Urgency != platform.UrgencyCritical {
		t.Fatalf("unexpected notices %+v", *got)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("RETOUCH_NOTIFY_TITLE", "Gallery")
	t.Setenv("RETOUCH_NOTIFY_COPY_TEXT", "Clipboard has %s")
	prefs := LoadPreferences()
	if prefs.Title != "Gallery" {
		t.Fatalf("title = %q", prefs.Title)
	}
	if prefs.Events[EventCopy].Template != "Clipboard has %s" {
		t.Fatalf("copy template = %q", prefs.Events[EventCopy].Template)
	}
	if prefs.Events[EventSave].Template != DefaultPreferences().Events[EventSave].Template {
		t.Fatalf("save template should keep its default")
	}

	got := captureSends(t, nil)
	n := New(prefs)
	n.Enable(EventCopy, true)
	n.Copied("")
	if len(*got) != 1 || (*got)[0].body != "Clipboard has image" || (*got)[0].title != "Gallery: Copied" {
		t.Fatalf("unexpected notice %+v", *got)
	}
}
