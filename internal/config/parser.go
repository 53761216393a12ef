package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/retouch/internal/render"
	"github.com/example/retouch/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case current != nil:
			err = theme.Set(current, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case section == "":
			setRootField(cfg, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

// splitKeyValue accepts "key = value" and "Key: value". Surrounding quotes
// are removed from the value.
func splitKeyValue(line string) (string, string, bool) {
	sep := "="
	if !strings.Contains(line, "=") {
		sep = ":"
	}
	key, value, ok := strings.Cut(line, sep)
	if !ok {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(key), value, true
}

func setRootField(cfg *Config, key, value string) {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "temp_dir":
		cfg.TempDir = value
	case "store":
		cfg.Store = strings.ToLower(value)
	case "store_path":
		cfg.StorePath = value
	}
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "failure":
		n.Failure = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setEditorField(e *Editor, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "box_width":
		e.BoxWidth, err = strconv.ParseFloat(value, 64)
	case "box_height":
		e.BoxHeight, err = strconv.ParseFloat(value, 64)
	case "stroke_width":
		e.StrokeWidth, err = strconv.ParseFloat(value, 64)
	case "jpeg_quality":
		e.JPEGQuality, err = strconv.Atoi(value)
	case "stroke_color":
		if _, err = render.ParseColor(value); err == nil {
			e.StrokeColor = value
		}
	}
	if err != nil {
		return fmt.Errorf("invalid value for key %s: %w", key, err)
	}
	return nil
}
