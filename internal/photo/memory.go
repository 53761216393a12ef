package photo

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryStore keeps photos in process memory, newest first.
type MemoryStore struct {
	mu     sync.RWMutex
	photos []Photo
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewSeededMemoryStore returns a store holding the bundled photos.
func NewSeededMemoryStore() *MemoryStore {
	return &MemoryStore{photos: Bundled()}
}

func (s *MemoryStore) indexLocked(id string) int {
	for i, p := range s.photos {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.photos[i], nil
	}
	return Photo{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
}

// Add prepends p.
func (s *MemoryStore) Add(ctx context.Context, p Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		return fmt.Errorf("add %s: %w", p.ID, ErrDuplicateID)
	}
	s.photos = append([]Photo{p}, s.photos...)
	logrus.WithFields(logrus.Fields{"photo_id": p.ID, "locator": p.Locator}).Debug("Photo added")
	return nil
}

// Update replaces the photo with the same ID in place. It reports false and
// leaves the store untouched when no such photo exists.
func (s *MemoryStore) Update(ctx context.Context, p Photo) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(p.ID)
	if i < 0 {
		return false, nil
	}
	s.photos[i] = p
	logrus.WithFields(logrus.Fields{"photo_id": p.ID, "locator": p.Locator}).Debug("Photo updated")
	return true, nil
}

// Upsert replaces p in place or prepends it when absent.
func (s *MemoryStore) Upsert(ctx context.Context, p Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(p.ID); i >= 0 {
		s.photos[i] = p
		return nil
	}
	s.photos = append([]Photo{p}, s.photos...)
	return nil
}

func (s *MemoryStore) All(ctx context.Context) ([]Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Photo, len(s.photos))
	copy(out, s.photos)
	return out, nil
}
