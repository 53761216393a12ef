package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/example/retouch/internal/annotate"
	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/clipboard"
	"github.com/example/retouch/internal/editor"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/nav"
	"github.com/example/retouch/internal/photo"
	"github.com/example/retouch/internal/render"
)

// Seam replaced in tests.
var copyArtifactFn = clipboard.CopyArtifact

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, "; ") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// sessionFlags are shared by the commands that open an editor session.
type sessionFlags struct {
	id          string
	boxWidth    float64
	boxHeight   float64
	strokeColor string
	strokeWidth float64
	quality     int
	tempDir     string
}

func (s *sessionFlags) register(fs *flag.FlagSet, r *root) {
	ed := r.config.Editor
	fs.StringVar(&s.id, "id", "", "id of the photo to edit")
	fs.Float64Var(&s.boxWidth, "box-width", ed.BoxWidth, "maximum display width of the photo")
	fs.Float64Var(&s.boxHeight, "box-height", ed.BoxHeight, "maximum display height of the photo")
	fs.StringVar(&s.strokeColor, "stroke-color", ed.StrokeColor, "annotation color (name or #RRGGBB)")
	fs.Float64Var(&s.strokeWidth, "stroke-width", ed.StrokeWidth, "annotation width in pixels")
	fs.IntVar(&s.quality, "quality", ed.JPEGQuality, "JPEG quality of the saved photo (1-100)")
	fs.StringVar(&s.tempDir, "temp-dir", r.config.TempDir, "directory for temporary captures")
}

// editorSetup is an opened session together with what it was opened against.
type editorSetup struct {
	session *editor.Session
	store   photo.Store
	stack   *nav.Stack
	close   func()
}

// openSession loads the photo and opens an editor session on top of a
// navigation stack that has reached the editor screen.
func (s *sessionFlags) openSession(ctx context.Context, r *root, extra ...editor.Option) (*editorSetup, error) {
	col, err := render.ParseColor(s.strokeColor)
	if err != nil {
		return nil, fmt.Errorf("stroke color: %w", err)
	}
	if s.strokeWidth <= 0 {
		return nil, fmt.Errorf("stroke width must be positive")
	}
	store, closeStore, err := r.openStore(ctx)
	if err != nil {
		return nil, err
	}
	p, err := store.Get(ctx, s.id)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("photo %q: %w", s.id, err)
	}

	stack := nav.NewStack()
	for _, screen := range []string{nav.Gallery, nav.GalleryList, nav.PhotoDetail, nav.PhotoEditor} {
		if err := stack.Push(screen); err != nil {
			closeStore()
			return nil, err
		}
	}

	opts := []editor.Option{
		editor.WithStore(store),
		editor.WithNavigator(stack),
		editor.WithNotifier(r.notifier),
		editor.WithDocumentsDir(r.documentsDir()),
		editor.WithCapturer(capture.FileCapturer{Dir: s.tempDir, Quality: s.quality}),
		editor.WithStrokeStyle(render.StrokeStyle{Color: col, Width: s.strokeWidth}),
	}
	sess, err := editor.Open(ctx, p, s.boxWidth, s.boxHeight, append(opts, extra...)...)
	if err != nil {
		closeStore()
		return nil, err
	}
	return &editorSetup{session: sess, store: store, stack: stack, close: closeStore}, nil
}

type editCmd struct {
	*root
	fs          *flag.FlagSet
	session     sessionFlags
	brightness  float64
	saturation  float64
	contrast    float64
	strokes     pathList
	toClipboard bool
}

func (e *editCmd) Program() string { return e.root.subcommand("edit") }

func (e *editCmd) FlagSet() *flag.FlagSet { return e.fs }

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	cmd := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.session.register(fs, r)
	id := filter.Identity()
	fs.Float64Var(&cmd.brightness, "brightness", id.Brightness, "brightness factor (0-2)")
	fs.Float64Var(&cmd.saturation, "saturation", id.Saturation, "saturation factor (0-2)")
	fs.Float64Var(&cmd.contrast, "contrast", id.Contrast, "contrast factor (0.5-2)")
	fs.Var(&cmd.strokes, "stroke", "annotation as SVG path data, e.g. \"M 10 10 L 40 40\" (repeatable)")
	fs.BoolVar(&cmd.toClipboard, "to-clipboard", false, "copy the saved photo to the clipboard")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: cmd}
		}
		return nil, err
	}
	if cmd.session.id == "" {
		if fs.NArg() != 1 {
			return nil, &UsageError{of: cmd}
		}
		cmd.session.id = fs.Arg(0)
	}
	return cmd, nil
}

func (e *editCmd) Run() error {
	strokes := make([]annotate.Stroke, 0, len(e.strokes))
	for _, d := range e.strokes {
		s, err := annotate.ParsePath(d)
		if err != nil {
			return fmt.Errorf("stroke %q: %w", d, err)
		}
		strokes = append(strokes, s)
	}

	ctx := context.Background()
	setup, err := e.session.openSession(ctx, e.root,
		editor.WithParams(filter.Parameters{Brightness: e.brightness, Saturation: e.saturation, Contrast: e.contrast}))
	if err != nil {
		return err
	}
	defer setup.close()
	defer setup.session.Close()

	setup.session.Canvas().Load(strokes)

	saved, err := setup.session.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.root.stdout, "%s\t%s\n", saved.ID, saved.Locator)

	if e.toClipboard {
		what, err := copyArtifactFn(ctx, saved.Locator)
		if err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		e.root.notifier.Copied(what)
	}
	return nil
}
