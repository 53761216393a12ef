package editor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/retouch/internal/annotate"
	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/filter"
	"github.com/example/retouch/internal/imagesrc"
	"github.com/example/retouch/internal/layout"
	"github.com/example/retouch/internal/nav"
	"github.com/example/retouch/internal/photo"
	"github.com/example/retouch/internal/render"
)

type recordingNotifier struct {
	mu     sync.Mutex
	saved  []string
	failed []string
}

func (r *recordingNotifier) Saved(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, path)
}

func (r *recordingNotifier) Failed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, reason)
}

type capturerFunc func(ctx context.Context, t capture.Target) (string, error)

func (f capturerFunc) Capture(ctx context.Context, t capture.Target) (string, error) { return f(ctx, t) }

type failingUpsertStore struct {
	*photo.MemoryStore
	err error
}

func (f failingUpsertStore) Upsert(context.Context, photo.Photo) error { return f.err }

type navFunc func(ctx context.Context, screen string) error

func (f navFunc) ResetTo(ctx context.Context, screen string) error { return f(ctx, screen) }

type fixture struct {
	store    *photo.MemoryStore
	stack    *nav.Stack
	notifier *recordingNotifier
	docs     string
	cache    string
	clock    time.Time
	p1       photo.Photo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		store:    photo.NewSeededMemoryStore(),
		stack:    nav.NewStack(),
		notifier: &recordingNotifier{},
		docs:     filepath.Join(dir, "documents"),
		cache:    filepath.Join(dir, "cache"),
		clock:    time.UnixMilli(1730000000000),
		p1:       photo.Photo{ID: "p1", Locator: "file:///pictures/beach.jpg", DisplayName: "beach.jpg"},
	}
	if err := f.store.Add(context.Background(), f.p1); err != nil {
		t.Fatal(err)
	}
	for _, r := range []string{nav.Gallery, nav.GalleryList, nav.PhotoDetail, nav.PhotoEditor} {
		_ = f.stack.Push(r)
	}
	return f
}

func (f *fixture) session(opts ...Option) *Session {
	base := image.NewNRGBA(image.Rect(0, 0, 80, 40))
	for i := 0; i < len(base.Pix); i += 4 {
		base.Pix[i], base.Pix[i+1], base.Pix[i+2], base.Pix[i+3] = 100, 120, 140, 255
	}
	l, _ := layout.Compute(80, 40, 40, 40)
	all := append([]Option{
		WithStore(f.store),
		WithNavigator(f.stack),
		WithNotifier(f.notifier),
		WithCapturer(capture.FileCapturer{Dir: f.cache}),
		WithClock(func() time.Time { return f.clock }),
		WithDocumentsDir(f.docs),
	}, opts...)
	return New(f.p1, base, l, all...)
}

func TestSaveEndToEnd(t *testing.T) {
	f := newFixture(t)
	s := f.session()
	s.SetParams(filter.Parameters{Brightness: 1.4, Saturation: 1, Contrast: 1})
	s.SetAnnotating(true)
	s.Surface().ContactStart(annotate.Point{X: 5, Y: 5})
	s.Surface().ContactMove(annotate.Point{X: 30, Y: 15})
	s.Surface().ContactEnd()

	saved, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	wantPath := filepath.Join(f.docs, "edited_beach.jpg_1730000000000.jpg")
	if saved.Locator != imagesrc.FileLocator(wantPath) || saved.ID != "p1" || saved.DisplayName != "beach.jpg" {
		t.Fatalf("saved = %+v", saved)
	}

	file, err := os.Open(wantPath)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	defer file.Close()
	img, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("artifact is not a jpeg: %v", err)
	}
	if img.Bounds().Size() != image.Pt(40, 20) {
		t.Fatalf("artifact size = %v, want layout size 40x20", img.Bounds().Size())
	}
	r, _, _, _ := img.At(38, 2).RGBA()
	if r>>8 < 130 {
		t.Fatalf("expected brightened pixel, got red %d", r>>8)
	}

	all, _ := f.store.All(context.Background())
	if all[0].ID != "p1" || all[0].Locator != saved.Locator || len(all) != 3 {
		t.Fatalf("store = %+v", all)
	}
	if f.stack.Current() != nav.GalleryList {
		t.Fatalf("navigation = %v", f.stack.Routes())
	}
	if entries, _ := os.ReadDir(f.cache); len(entries) != 0 {
		t.Fatalf("temporary capture not removed: %d files", len(entries))
	}
	if len(f.notifier.saved) != 1 || f.notifier.saved[0] != wantPath {
		t.Fatalf("saved notices = %v", f.notifier.saved)
	}
	if s.Photo().Locator != saved.Locator {
		t.Fatalf("session photo not updated")
	}
}

func TestSaveSourceMissing(t *testing.T) {
	f := newFixture(t)
	calls := 0
	fileCapturer := capture.FileCapturer{Dir: f.cache}
	s := f.session(WithCapturer(capturerFunc(func(ctx context.Context, target capture.Target) (string, error) {
		calls++
		if calls == 1 {
			return imagesrc.FileLocator(filepath.Join(f.cache, "vanished.jpg")), nil
		}
		return fileCapturer.Capture(ctx, target)
	})))
	before, _ := f.store.All(context.Background())

	_, err := s.Save(context.Background())
	var se *SaveError
	if !errors.As(err, &se) || se.Kind != SourceMissing || !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected SourceMissing, got %v", err)
	}
	after, _ := f.store.All(context.Background())
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("store changed on failure: %+v", after)
	}
	if f.stack.Current() != nav.PhotoEditor {
		t.Fatalf("navigation changed on failure: %v", f.stack.Routes())
	}
	if len(f.notifier.failed) != 1 {
		t.Fatalf("expected one failure notice, got %v", f.notifier.failed)
	}
	if _, err := os.Stat(f.docs); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("documents directory should not exist yet")
	}

	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if f.stack.Current() != nav.GalleryList {
		t.Fatalf("retry did not navigate")
	}
}

func TestSaveNoRenderTarget(t *testing.T) {
	f := newFixture(t)
	called := false
	s := f.session(WithCapturer(capturerFunc(func(context.Context, capture.Target) (string, error) {
		called = true
		return "", nil
	})))
	s.Close()
	_, err := s.Save(context.Background())
	if !errors.Is(err, ErrNoRenderTarget) {
		t.Fatalf("expected ErrNoRenderTarget, got %v", err)
	}
	if called {
		t.Fatalf("capturer must not run without a render target")
	}
	if _, err := s.Render(context.Background()); !errors.Is(err, capture.ErrNoTarget) {
		t.Fatalf("Render after close = %v", err)
	}
}

func TestSaveCaptureFailed(t *testing.T) {
	f := newFixture(t)
	s := f.session(WithCapturer(capturerFunc(func(context.Context, capture.Target) (string, error) {
		return "", errors.New("encoder exploded")
	})))
	if _, err := s.Save(context.Background()); !errors.Is(err, ErrCaptureFailed) {
		t.Fatalf("expected ErrCaptureFailed, got %v", err)
	}
}

func TestSaveSingleFlight(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	fileCapturer := capture.FileCapturer{Dir: f.cache}
	s := f.session(WithCapturer(capturerFunc(func(ctx context.Context, target capture.Target) (string, error) {
		close(entered)
		<-release
		return fileCapturer.Capture(ctx, target)
	})))

	results := s.SaveAsync(context.Background())
	<-entered
	if !s.Saving() {
		t.Fatalf("expected save in flight")
	}
	if _, err := s.Save(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("expected ErrSaveInProgress, got %v", err)
	}
	close(release)
	res := <-results
	if res.Err != nil {
		t.Fatalf("first save failed: %v", res.Err)
	}
	if _, ok := <-results; ok {
		t.Fatalf("result channel should be closed")
	}
	if s.Saving() {
		t.Fatalf("guard not released")
	}
}

func TestSaveSurvivesCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	fileCapturer := capture.FileCapturer{Dir: f.cache}
	s := f.session(WithCapturer(capturerFunc(func(c context.Context, target capture.Target) (string, error) {
		cancel()
		if c.Err() != nil {
			return "", c.Err()
		}
		return fileCapturer.Capture(c, target)
	})))
	saved, err := s.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := f.store.Get(context.Background(), "p1")
	if got.Locator != saved.Locator {
		t.Fatalf("store not updated: %+v", got)
	}
}

func TestSaveUpsertFailureRemovesArtifact(t *testing.T) {
	f := newFixture(t)
	store := failingUpsertStore{MemoryStore: f.store, err: errors.New("database locked")}
	s := f.session(WithStore(store))
	_, err := s.Save(context.Background())
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
	entries, _ := os.ReadDir(f.docs)
	if len(entries) != 0 {
		t.Fatalf("artifact kept after publish failure: %d files", len(entries))
	}
	if f.stack.Current() != nav.PhotoEditor {
		t.Fatalf("navigation changed on failure")
	}
	if s.Photo().Locator != f.p1.Locator {
		t.Fatalf("session photo changed on failure")
	}
}

func TestSaveNavigatesAfterPublish(t *testing.T) {
	f := newFixture(t)
	var seen string
	s := f.session(WithNavigator(navFunc(func(ctx context.Context, screen string) error {
		p, _ := f.store.Get(ctx, "p1")
		seen = screen + " " + p.Locator
		return nil
	})))
	saved, err := s.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if seen != nav.GalleryList+" "+saved.Locator {
		t.Fatalf("navigation ran before the store was updated: %q", seen)
	}
}

func TestAdjustAndReset(t *testing.T) {
	f := newFixture(t)
	s := f.session()
	for i := 0; i < 4; i++ {
		s.Adjust(filter.Step, 0, -filter.Step)
	}
	p := s.Params()
	if p.Brightness != 1.4 || p.Contrast != 0.6 {
		t.Fatalf("params = %+v", p)
	}
	for i := 0; i < 20; i++ {
		s.Adjust(0, 0, -filter.Step)
	}
	if s.Params().Contrast != filter.MinContrast {
		t.Fatalf("contrast not clamped: %v", s.Params().Contrast)
	}
	s.ResetFilters()
	if s.Params() != filter.Identity() || !s.Matrix().IsIdentity() {
		t.Fatalf("reset failed: %+v", s.Params())
	}
}

func TestClearAnnotations(t *testing.T) {
	f := newFixture(t)
	var snaps []string
	s := f.session(WithAnnotationListener(func(snap string) { snaps = append(snaps, snap) }))
	s.SetAnnotating(true)
	s.Surface().ContactStart(annotate.Point{X: 1, Y: 1})
	s.Surface().ContactEnd()
	if s.AnnotationSnapshot() != `[{"d":"M 1 1"}]` {
		t.Fatalf("snapshot = %q", s.AnnotationSnapshot())
	}
	s.ClearAnnotations()
	s.ClearAnnotations()
	if len(s.Canvas().Strokes()) != 0 || s.AnnotationSnapshot() != "[]" {
		t.Fatalf("annotations not cleared")
	}
	if len(snaps) != 3 || s.Canvas().LastToken() != 2 {
		t.Fatalf("snapshots = %v token = %d", snaps, s.Canvas().LastToken())
	}
}

func TestRenderDrawsStrokesOverFilter(t *testing.T) {
	f := newFixture(t)
	pen := render.StrokeStyle{Color: color.RGBA{R: 255, A: 255}, Width: 4}
	s := f.session(
		WithParams(filter.Parameters{Brightness: 0, Saturation: 1, Contrast: 1}),
		WithStrokeStyle(pen),
	)
	s.SetAnnotating(true)
	s.Surface().ContactStart(annotate.Point{X: 2, Y: 10})
	s.Surface().ContactMove(annotate.Point{X: 38, Y: 10})
	s.Surface().ContactEnd()
	img, err := s.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	rgba := img.(*image.RGBA)
	if got := rgba.RGBAAt(20, 2); got != (color.RGBA{A: 255}) {
		t.Fatalf("filtered background = %+v", got)
	}
	if got := rgba.RGBAAt(20, 10); got != pen.Color {
		t.Fatalf("stroke pixel = %+v", got)
	}
}

func TestOpenBundledPhoto(t *testing.T) {
	s, err := Open(context.Background(), photo.Bundled()[0], 120, 120)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Layout().Size(); got != image.Pt(90, 120) {
		t.Fatalf("layout = %v", got)
	}
}
