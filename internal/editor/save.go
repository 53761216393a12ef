package editor

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/example/retouch/internal/capture"
	"github.com/example/retouch/internal/imagesrc"
	"github.com/example/retouch/internal/nav"
	"github.com/example/retouch/internal/persist"
	"github.com/example/retouch/internal/photo"
)

// SaveResult is delivered by SaveAsync.
type SaveResult struct {
	Photo photo.Photo
	Err   error
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool { return s.saving.Load() }

// Save captures the current frame, copies it into the documents directory,
// publishes the new locator to the store and then resets navigation to the
// gallery list. Once capture has started the pipeline runs to completion even
// if ctx is cancelled. On failure the store and navigation are untouched and
// the session can be saved again.
func (s *Session) Save(ctx context.Context) (photo.Photo, error) {
	if !s.saving.CompareAndSwap(false, true) {
		return photo.Photo{}, ErrSaveInProgress
	}
	defer s.saving.Store(false)

	current := s.Photo()
	log := logrus.WithField("photo_id", current.ID)

	if !s.Attached() {
		return photo.Photo{}, s.fail(log, "render", &SaveError{Kind: NoRenderTarget})
	}

	work := context.WithoutCancel(ctx)

	tmp, err := s.capturer.Capture(work, s)
	if err != nil {
		kind := CaptureFailed
		if errors.Is(err, capture.ErrNoTarget) {
			kind = NoRenderTarget
		}
		return photo.Photo{}, s.fail(log, "capture", &SaveError{Kind: kind, Err: err})
	}
	log = log.WithField("capture", tmp)

	name := persist.Filename(current.DisplayName, s.now())
	final, err := persist.Copy(tmp, s.docsDir, name)
	if err != nil {
		kind := PersistFailed
		if errors.Is(err, persist.ErrSourceMissing) {
			kind = SourceMissing
		}
		s.discard(log, tmp)
		return photo.Photo{}, s.fail(log, "copy", &SaveError{Kind: kind, Err: err})
	}
	s.discard(log, tmp)

	updated := photo.Photo{ID: current.ID, Locator: final, DisplayName: current.DisplayName}
	if err := s.store.Upsert(work, updated); err != nil {
		s.discard(log, final)
		return photo.Photo{}, s.fail(log, "publish", &SaveError{Kind: PersistFailed, Err: err})
	}

	s.mu.Lock()
	s.photo = updated
	s.mu.Unlock()

	log.WithField("locator", final).Info("Edited photo saved")
	if s.notifier != nil {
		if path, err := imagesrc.LocalPath(final); err == nil {
			s.notifier.Saved(path)
		}
	}
	if s.navigator != nil {
		if err := s.navigator.ResetTo(ctx, nav.GalleryList); err != nil {
			log.WithError(err).Warn("Navigation reset after save failed")
		}
	}
	return updated, nil
}

// SaveAsync runs Save on its own goroutine. The channel receives exactly one
// result and is then closed.
func (s *Session) SaveAsync(ctx context.Context) <-chan SaveResult {
	ch := make(chan SaveResult, 1)
	go func() {
		defer close(ch)
		p, err := s.Save(ctx)
		ch <- SaveResult{Photo: p, Err: err}
	}()
	return ch
}

func (s *Session) fail(log *logrus.Entry, step string, err *SaveError) error {
	log.WithFields(logrus.Fields{
		"step": step,
		"kind": err.Kind.String(),
	}).WithError(err).Error("Save failed")
	if s.notifier != nil {
		s.notifier.Failed(err.Kind.notice())
	}
	return err
}

func (s *Session) discard(log *logrus.Entry, locator string) {
	if err := persist.Remove(locator); err != nil {
		log.WithError(err).WithField("file", locator).Warn("Could not remove file")
	}
}
