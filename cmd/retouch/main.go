package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/config"
	"github.com/example/retouch/internal/notify"
	"github.com/example/retouch/internal/persist"
	"github.com/example/retouch/internal/photo"
	"github.com/example/retouch/internal/photo/sqlite"
	"github.com/example/retouch/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	stdout      io.Writer
	logLevel    string
	saveAlerts  bool
	failAlerts  bool
	copyAlerts  bool
	themeName   string
	storeKind   string
	storePath   string
	saveDir     string
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot(cfg *config.Config) *root {
	r := &root{
		fs:       flag.NewFlagSet("retouch", flag.ContinueOnError),
		program:  "retouch",
		notifier: notify.New(notify.LoadPreferences()),
		config:   cfg,
		stdout:   os.Stdout,
	}
	r.fs.SetOutput(io.Discard)
	r.fs.StringVar(&r.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $RETOUCH_LOG_LEVEL or warn")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an edited photo")
	r.fs.BoolVar(&r.failAlerts, "notify-failure", cfg.Notify.Failure, "show a desktop notification when a save fails")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme for the editor window (default, dark, or a theme file)")
	r.fs.StringVar(&r.storeKind, "store", "", "photo store backend (memory, sqlite)")
	r.fs.StringVar(&r.storePath, "store-path", "", "sqlite database path")
	r.fs.StringVar(&r.saveDir, "save-dir", "", "directory edited photos are saved into")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.configureLogging(); err != nil {
		return err
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventFailure, r.failAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "photos":
		cmd, err = parsePhotosCmd(subArgs, r)
	case "layout":
		cmd, err = parseLayoutCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "ui":
		cmd, err = parseUICmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) configureLogging() error {
	level := r.logLevel
	if level == "" {
		level = os.Getenv("RETOUCH_LOG_LEVEL")
	}
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// resolveTheme applies the precedence CLI > env > config > default.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("RETOUCH_THEME")
	}
	if name == "" {
		name = r.config.Theme
	}
	if t, ok := r.config.Themes[name]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		return theme.Default()
	}
	return t
}

func (r *root) documentsDir() string {
	if r.saveDir != "" {
		return r.saveDir
	}
	if dir := os.Getenv("RETOUCH_DOCUMENTS_DIR"); dir != "" {
		return dir
	}
	if r.config.SaveDir != "" {
		return r.config.SaveDir
	}
	return persist.DefaultDocumentsDir()
}

func defaultStorePath() string {
	return filepath.Join(filepath.Dir(persist.DefaultDocumentsDir()), "photos.db")
}

// openStore returns the configured photo store seeded with the bundled
// photos. The returned func releases it.
func (r *root) openStore(ctx context.Context) (photo.Store, func(), error) {
	kind := r.storeKind
	if kind == "" {
		kind = os.Getenv("RETOUCH_STORE")
	}
	if kind == "" {
		kind = r.config.Store
	}
	switch strings.ToLower(kind) {
	case "", config.StoreMemory:
		return photo.NewSeededMemoryStore(), func() {}, nil
	case config.StoreSQLite:
		path := r.storePath
		if path == "" {
			path = r.config.StorePath
		}
		if path == "" {
			path = defaultStorePath()
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		if err := photo.Seed(ctx, s); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("seed photo store: %w", err)
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", kind)
}

func loadConfig() *config.Config {
	cfg, err := config.NewLoader(version, configPathOverride).Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return cfg
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
	r := newRoot(loadConfig())
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
