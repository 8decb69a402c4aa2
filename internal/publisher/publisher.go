// Package publisher is a framework-agnostic registry of status listeners.
package publisher

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/domain"
)

// Listener receives status snapshots. It must not retain or mutate
// anything shared; each call gets its own copy.
type Listener func(domain.NetworkStatus)

type Publisher struct {
	logger *zap.Logger

	mu        sync.RWMutex
	listeners map[string]Listener
}

func New(logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		logger:    logger,
		listeners: make(map[string]Listener),
	}
}

// Add registers fn and returns its id and an idempotent remove func.
func (p *Publisher) Add(fn Listener) (string, func()) {
	id := uuid.NewString()
	p.mu.Lock()
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return id, func() {
		once.Do(func() { p.Remove(id) })
	}
}

func (p *Publisher) Remove(id string) {
	p.mu.Lock()
	delete(p.listeners, id)
	p.mu.Unlock()
}

// Clear drops every listener.
func (p *Publisher) Clear() {
	p.mu.Lock()
	p.listeners = make(map[string]Listener)
	p.mu.Unlock()
}

func (p *Publisher) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.listeners)
}

// Notify delivers s to every listener registered when it is called.
// A panicking listener is logged and skipped.
func (p *Publisher) Notify(s domain.NetworkStatus) {
	p.mu.RLock()
	ids := make([]string, 0, len(p.listeners))
	fns := make([]Listener, 0, len(p.listeners))
	for id, fn := range p.listeners {
		ids = append(ids, id)
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for i, fn := range fns {
		p.Deliver(ids[i], fn, s)
	}
}

// Deliver invokes one listener with its own copy of s, swallowing panics.
func (p *Publisher) Deliver(id string, fn Listener, s domain.NetworkStatus) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("listener_panic",
				zap.String("listener_id", id),
				zap.Any("panic", r),
			)
		}
	}()
	fn(s.Clone())
}
