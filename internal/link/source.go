// Package link reports the device's local network link state, the
// passive half of connectivity monitoring.
package link

import (
	"context"
	"sync"

	"github.com/hamed0406/netwatch/internal/domain"
)

// Source is a platform connectivity API: a point-in-time reading plus
// change notifications.
type Source interface {
	Current(ctx context.Context) (domain.LinkState, error)
	Watch(fn func(domain.LinkState)) (stop func())
}

// watchers is the fan-out shared by the sources in this package.
type watchers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(domain.LinkState)
}

func (w *watchers) add(fn func(domain.LinkState)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fns == nil {
		w.fns = make(map[int]func(domain.LinkState))
	}
	id := w.next
	w.next++
	w.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.fns, id)
			w.mu.Unlock()
		})
	}
}

func (w *watchers) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.fns)
}

func (w *watchers) emit(ls domain.LinkState) {
	w.mu.Lock()
	fns := make([]func(domain.LinkState), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(ls)
	}
}

// Manual is a Source whose state is set by the caller. Set delivers to
// watchers synchronously on the calling goroutine.
type Manual struct {
	mu    sync.RWMutex
	state domain.LinkState
	err   error
	w     watchers
}

func NewManual(initial domain.LinkState) *Manual {
	return &Manual{state: initial}
}

func (m *Manual) Current(context.Context) (domain.LinkState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.err
}

func (m *Manual) Watch(fn func(domain.LinkState)) func() {
	return m.w.add(fn)
}

// Set records a new state and notifies watchers, even if unchanged.
func (m *Manual) Set(ls domain.LinkState) {
	m.mu.Lock()
	m.state = ls
	m.mu.Unlock()
	m.w.emit(ls)
}

// FailCurrent makes Current return err until cleared with nil.
func (m *Manual) FailCurrent(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Watchers reports how many watchers are registered.
func (m *Manual) Watchers() int { return m.w.count() }
