package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = sunset
save_dir = /tmp/edits
store = SQLite
store_path = "/tmp/retouch.db"

[notify]
save = false
failure = true
copy = true

[editor]
box_width = 320
box_height = 480
stroke_color = tomato
stroke_width = 4.5
jpeg_quality = 80

[theme.sunset]
Background = #111111
Accent: #FF8800
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "sunset" || cfg.SaveDir != "/tmp/edits" {
		t.Errorf("root keys = %q %q", cfg.Theme, cfg.SaveDir)
	}
	if cfg.Store != StoreSQLite || cfg.StorePath != "/tmp/retouch.db" {
		t.Errorf("store = %q %q", cfg.Store, cfg.StorePath)
	}
	if cfg.Notify != (Notify{Save: false, Failure: true, Copy: true}) {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	want := Editor{BoxWidth: 320, BoxHeight: 480, StrokeColor: "tomato", StrokeWidth: 4.5, JPEGQuality: 80}
	if cfg.Editor != want {
		t.Errorf("editor = %+v", cfg.Editor)
	}

	th, ok := cfg.Themes["sunset"]
	if !ok {
		t.Fatal("expected theme 'sunset' to be loaded")
	}
	if th.Background.R != 0x11 || th.Accent.G != 0x88 {
		t.Errorf("unexpected theme colors: %+v %+v", th.Background, th.Accent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bool":    "[notify]\nsave = maybe\n",
		"number":  "[editor]\nbox_width = wide\n",
		"color":   "[editor]\nstroke_color = notacolor\n",
		"theme":   "[theme.x]\nCard = #12\n",
		"quality": "[editor]\njpeg_quality = 9.5\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(input)); err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Store = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown store error")
	}
	cfg = New()
	cfg.Editor.JPEGQuality = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected quality error")
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/edits
temp_dir = /var/tmp
store = sqlite

[notify]
save = true
failure = false
copy = true

[editor]
box_width = 250.5
stroke_color = #336699

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("initial parse failed: %v", err)
	}
	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("circular parse failed: %v", err)
	}

	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir || cfg.TempDir != cfg2.TempDir || cfg.Store != cfg2.Store {
		t.Errorf("root mismatch:\n%+v\n%+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Editor != cfg2.Editor {
		t.Errorf("editor mismatch: %+v vs %+v", cfg.Editor, cfg2.Editor)
	}
	t1, t2 := cfg.Themes["custom"], cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestLoaderOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retouch.rc")
	cfg := New()
	cfg.SaveDir = "/srv/photos"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("HOME", t.TempDir())
	loaded, err := NewLoader("1.0.0", path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SaveDir != "/srv/photos" {
		t.Fatalf("save_dir = %q", loaded.SaveDir)
	}

	empty, err := NewLoader("1.0.0", filepath.Join(dir, "missing.rc")).Load()
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if empty.SaveDir != "" || empty.Store != StoreMemory {
		t.Fatalf("expected defaults, got %+v", empty)
	}
}

func TestLoaderDevMode(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	os.WriteFile(filepath.Join(dir, ".retouchrc"), []byte("theme = dark\n"), 0o644)

	if got := NewLoader("dev", "").GetConfigPath(); got != filepath.Join(dir, ".retouchrc") {
		t.Fatalf("dev path = %q", got)
	}
	if got := NewLoader("1.2.3", "").GetConfigPath(); got != "" {
		t.Fatalf("release build should ignore .retouchrc, got %q", got)
	}
}
