package photo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func ids(photos []Photo) string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return strings.Join(out, ",")
}

func TestSeededMemoryStore(t *testing.T) {
	s := NewSeededMemoryStore()
	all, _ := s.All(context.Background())
	if got := ids(all); got != "planner,apple" {
		t.Fatalf("seed order = %s", got)
	}
	p, err := s.Get(context.Background(), "apple")
	if err != nil || p.Locator != "asset:apple.png" || p.DisplayName != "apple.png" {
		t.Fatalf("Get(apple) = %+v, %v", p, err)
	}
}

func TestAddPrepends(t *testing.T) {
	ctx := context.Background()
	s := NewSeededMemoryStore()
	if err := s.Add(ctx, Photo{ID: "p3", Locator: "file:///x.jpg"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	all, _ := s.All(ctx)
	if got := ids(all); got != "p3,planner,apple" {
		t.Fatalf("order = %s", got)
	}
	if err := s.Add(ctx, Photo{ID: "p3"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s := NewSeededMemoryStore()
	ok, err := s.Update(ctx, Photo{ID: "apple", Locator: "file:///docs/edited.jpg", DisplayName: "apple.png"})
	if err != nil || !ok {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	all, _ := s.All(ctx)
	if got := ids(all); got != "planner,apple" {
		t.Fatalf("update must not reorder, got %s", got)
	}
	if all[1].Locator != "file:///docs/edited.jpg" {
		t.Fatalf("locator not replaced: %+v", all[1])
	}

	ok, err = s.Update(ctx, Photo{ID: "ghost"})
	if err != nil || ok {
		t.Fatalf("Update(ghost) = %v, %v", ok, err)
	}
	all, _ = s.All(ctx)
	if len(all) != 2 {
		t.Fatalf("update of missing id changed the store: %v", all)
	}
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Upsert(ctx, Photo{ID: "a", Locator: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, Photo{ID: "b", Locator: "2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, Photo{ID: "a", Locator: "3"}); err != nil {
		t.Fatal(err)
	}
	all, _ := s.All(ctx)
	if ids(all) != "b,a" || all[1].Locator != "3" {
		t.Fatalf("unexpected state %+v", all)
	}
}

func TestGetMissing(t *testing.T) {
	if _, err := NewMemoryStore().Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedSkipsExisting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Add(ctx, Photo{ID: "apple", Locator: "file:///edited.jpg"})
	if err := Seed(ctx, s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	all, _ := s.All(ctx)
	if got := ids(all); got != "planner,apple" {
		t.Fatalf("order = %s", got)
	}
	p, _ := s.Get(ctx, "apple")
	if p.Locator != "file:///edited.jpg" {
		t.Fatalf("Seed overwrote an existing photo: %+v", p)
	}
}

func TestFromLocator(t *testing.T) {
	p := FromLocator("file:///pictures/holiday.jpg")
	if p.DisplayName != "holiday.jpg" || len(p.ID) != 26 {
		t.Fatalf("FromLocator = %+v", p)
	}
	if q := FromLocator("file:///pictures/holiday.jpg"); q.ID == p.ID {
		t.Fatalf("expected unique ids")
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewSeededMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Add(ctx, FromLocator("/tmp/x.jpg"))
			_, _ = s.Update(ctx, Photo{ID: "apple", Locator: "file:///y.jpg"})
			_, _ = s.All(ctx)
		}()
	}
	wg.Wait()
	all, _ := s.All(ctx)
	if len(all) != 22 {
		t.Fatalf("len = %d, want 22", len(all))
	}
}
