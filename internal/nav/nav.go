// Package nav is a minimal route stack standing in for the application's
// navigation shell.
package nav

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Route names.
const (
	Main        = "Main"
	Gallery     = "Gallery"
	GalleryList = "GalleryList"
	PhotoDetail = "PhotoDetail"
	PhotoEditor = "PhotoEditor"
)

var known = map[string]bool{
	Main: true, Gallery: true, GalleryList: true, PhotoDetail: true, PhotoEditor: true,
}

// Navigator is what the editor needs from the navigation shell.
type Navigator interface {
	ResetTo(ctx context.Context, screen string) error
}

// Stack is an in-memory Navigator. Safe for concurrent use.
type Stack struct {
	mu       sync.Mutex
	routes   []string
	onChange func(routes []string)
}

// NewStack returns a stack rooted at Main.
func NewStack() *Stack {
	return &Stack{routes: []string{Main}}
}

// OnChange registers fn to be called with the new route list after every
// change.
func (s *Stack) OnChange(fn func(routes []string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Push opens screen on top of the current one.
func (s *Stack) Push(screen string) error {
	if !known[screen] {
		return fmt.Errorf("unknown screen %q", screen)
	}
	s.mu.Lock()
	s.routes = append(s.routes, screen)
	notify := s.snapshotLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Pop closes the current screen. The root is never popped.
func (s *Stack) Pop() bool {
	s.mu.Lock()
	if len(s.routes) <= 1 {
		s.mu.Unlock()
		return false
	}
	s.routes = s.routes[:len(s.routes)-1]
	notify := s.snapshotLocked()
	s.mu.Unlock()
	notify()
	return true
}

// ResetTo unwinds the stack to the root and the gallery, ending on screen.
// Gallery screens are reached through Main then Gallery.
func (s *Stack) ResetTo(ctx context.Context, screen string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !known[screen] {
		return fmt.Errorf("unknown screen %q", screen)
	}
	routes := []string{Main}
	switch screen {
	case Main:
	case Gallery:
		routes = append(routes, Gallery)
	default:
		routes = append(routes, Gallery, screen)
	}
	s.mu.Lock()
	s.routes = routes
	notify := s.snapshotLocked()
	s.mu.Unlock()
	logrus.WithField("route", strings.Join(routes, "/")).Debug("Navigation reset")
	notify()
	return nil
}

// Current returns the top route.
func (s *Stack) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routes[len(s.routes)-1]
}

// Routes returns a copy of the whole stack, root first.
func (s *Stack) Routes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.routes...)
}

func (s *Stack) snapshotLocked() func() {
	fn := s.onChange
	routes := append([]string(nil), s.routes...)
	return func() {
		if fn != nil {
			fn(routes)
		}
	}
}
