package editor

import (
	"errors"
	"fmt"
)

// Kind classifies why a save failed.
type Kind int

const (
	NoRenderTarget Kind = iota + 1
	CaptureFailed
	SourceMissing
	PersistFailed
)

var (
	ErrNoRenderTarget = errors.New("no render target")
	ErrCaptureFailed  = errors.New("capture failed")
	ErrSourceMissing  = errors.New("captured file missing")
	ErrPersistFailed  = errors.New("persist failed")

	// ErrSaveInProgress is returned when Save is called while another save
	// on the same session has not finished.
	ErrSaveInProgress = errors.New("save already in progress")
)

func (k Kind) String() string {
	switch k {
	case NoRenderTarget:
		return "NoRenderTarget"
	case CaptureFailed:
		return "CaptureFailed"
	case SourceMissing:
		return "SourceMissing"
	case PersistFailed:
		return "PersistFailed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case NoRenderTarget:
		return ErrNoRenderTarget
	case CaptureFailed:
		return ErrCaptureFailed
	case SourceMissing:
		return ErrSourceMissing
	case PersistFailed:
		return ErrPersistFailed
	}
	return nil
}

// notice is the short user-facing reason shown in the failure notice.
func (k Kind) notice() string {
	switch k {
	case NoRenderTarget:
		return "the editor is no longer showing the photo"
	case CaptureFailed:
		return "the edited image could not be captured"
	case SourceMissing:
		return "the captured image disappeared before it could be stored"
	}
	return "the file could not be written"
}

// SaveError reports which pipeline step failed. Match with errors.Is against
// the Err* sentinels or errors.As for the Kind.
type SaveError struct {
	Kind Kind
	Err  error
}

func (e *SaveError) Error() string {
	reason := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		reason = s.Error()
	}
	if e.Err == nil {
		return "save: " + reason
	}
	return fmt.Sprintf("save: %s: %v", reason, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
