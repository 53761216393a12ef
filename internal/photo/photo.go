// Package photo holds the gallery's shared photo records and the stores that
// keep them.
package photo

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"

	"github.com/example/retouch/internal/imagesrc"
)

var (
	// ErrNotFound is returned when no photo has the requested ID.
	ErrNotFound = errors.New("photo not found")
	// ErrDuplicateID is returned by Add when the ID is already taken.
	ErrDuplicateID = errors.New("photo id already exists")
)

// Photo is one gallery entry. ID is the identity; Locator changes when an
// edited version is saved.
type Photo struct {
	ID          string
	Locator     string
	DisplayName string
}

// Store is the shared photo collection. Implementations are safe for
// concurrent use. All returns photos newest first.
type Store interface {
	Get(ctx context.Context, id string) (Photo, error)
	Add(ctx context.Context, p Photo) error
	Update(ctx context.Context, p Photo) (bool, error)
	Upsert(ctx context.Context, p Photo) error
	All(ctx context.Context) ([]Photo, error)
}

// NewID returns a fresh sortable photo identifier.
func NewID() string {
	return ulid.Make().String()
}

// FromLocator builds a photo record for a newly picked image.
func FromLocator(locator string) Photo {
	return Photo{
		ID:          NewID(),
		Locator:     locator,
		DisplayName: imagesrc.DisplayName(locator) + extOf(locator),
	}
}

func extOf(locator string) string {
	for i := len(locator) - 1; i >= 0 && locator[i] != '/' && locator[i] != ':'; i-- {
		if locator[i] == '.' {
			return locator[i:]
		}
	}
	return ""
}

// Bundled returns the sample photos shipped inside the binary.
func Bundled() []Photo {
	return []Photo{
		{ID: "planner", Locator: imagesrc.AssetScheme + "planner.png", DisplayName: "planner.png"},
		{ID: "apple", Locator: imagesrc.AssetScheme + "apple.png", DisplayName: "apple.png"},
	}
}

// Seed adds the bundled photos that are not yet present, keeping their
// listed order.
func Seed(ctx context.Context, s Store) error {
	bundled := Bundled()
	for i := len(bundled) - 1; i >= 0; i-- {
		p := bundled[i]
		if _, err := s.Get(ctx, p.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.Add(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
