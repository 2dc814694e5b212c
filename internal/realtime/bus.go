// Package realtime carries change notifications from writers to the
// per-user store subscriptions.
package realtime

import (
	"context"
	"sync"

	"promptvault-backend/internal/models"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change tells subscribers that a user's collection was written.
type Change struct {
	UserID     uint              `json:"userId"`
	Collection models.Collection `json:"collection"`
	Op         Op                `json:"op"`
	IDs        []uint            `json:"ids,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe registers fn for every published change. The returned
	// function unregisters it and is safe to call more than once.
	Subscribe(fn func(Change)) (unsubscribe func(), err error)
	Close() error
}

// LocalBus delivers changes in-process, synchronously on the publishing
// goroutine.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[int]func(Change)
	nextID   int
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[int]func(Change))}
}

func (b *LocalBus) Publish(_ context.Context, change Change) error {
	b.dispatch(change)
	return nil
}

func (b *LocalBus) dispatch(change Change) {
	b.mu.RLock()
	handlers := make([]func(Change), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(change)
	}
}

func (b *LocalBus) Subscribe(fn func(Change)) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	b.handlers = make(map[int]func(Change))
	b.mu.Unlock()
	return nil
}
