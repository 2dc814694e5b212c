package store

import (
	"fmt"
	"sync"

	"promptvault-backend/internal/models"
)

// Subscriber is the subscribe half of a persistence adapter: onChange
// receives the full collection for the user right away and after every
// change.
type Subscriber[T any] interface {
	Subscribe(userID uint, onChange func([]T)) (unsubscribe func(), err error)
}

// Sources are the four collections a store is built from.
type Sources struct {
	Prompts     Subscriber[models.Prompt]
	Categories  Subscriber[models.Category]
	Tags        Subscriber[models.Tag]
	ExpertRoles Subscriber[models.ExpertRole]
}

type entry struct {
	store        *Store
	unsubscribes []func()
	holds        int
	dropped      bool
}

// Registry owns one Store per signed-in user.
type Registry struct {
	mu      sync.Mutex
	sources Sources
	entries map[uint]*entry
}

func NewRegistry(sources Sources) *Registry {
	return &Registry{
		sources: sources,
		entries: make(map[uint]*entry),
	}
}

// Acquire returns the user's store, subscribing it to the persistence
// layer on first use.
func (r *Registry) Acquire(userID uint) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.acquire(userID)
	if err != nil {
		return nil, err
	}
	return e.store, nil
}

// Hold acquires the user's store and keeps it subscribed until release is
// called, even if Drop runs in between. Long-lived readers such as event
// streams use it.
func (r *Registry) Hold(userID uint) (*Store, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.acquire(userID)
	if err != nil {
		return nil, nil, err
	}
	e.holds++

	var once sync.Once
	release := func() {
		once.Do(func() { r.release(userID, e) })
	}
	return e.store, release, nil
}

func (r *Registry) release(userID uint, e *entry) {
	r.mu.Lock()
	e.holds--
	closing := e.holds == 0 && e.dropped
	if closing && r.entries[userID] == e {
		delete(r.entries, userID)
	}
	r.mu.Unlock()

	if closing {
		e.close()
	}
}

func (r *Registry) acquire(userID uint) (*entry, error) {
	if e, ok := r.entries[userID]; ok {
		e.dropped = false
		return e, nil
	}

	s := New()
	e := &entry{store: s}
	subscribe := []func() (func(), error){
		func() (func(), error) { return r.sources.Prompts.Subscribe(userID, s.ReplacePrompts) },
		func() (func(), error) { return r.sources.Categories.Subscribe(userID, s.ReplaceCategories) },
		func() (func(), error) { return r.sources.Tags.Subscribe(userID, s.ReplaceTags) },
		func() (func(), error) { return r.sources.ExpertRoles.Subscribe(userID, s.ReplaceExpertRoles) },
	}
	for _, sub := range subscribe {
		unsubscribe, err := sub()
		if err != nil {
			e.close()
			return nil, fmt.Errorf("subscribe store for user %d: %w", userID, err)
		}
		e.unsubscribes = append(e.unsubscribes, unsubscribe)
	}

	r.entries[userID] = e
	return e, nil
}

// Drop tears down the user's subscriptions and forgets the store. A store
// that is still held stays subscribed until its last holder releases it.
func (r *Registry) Drop(userID uint) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	if ok && e.holds > 0 {
		e.dropped = true
		r.mu.Unlock()
		return
	}
	delete(r.entries, userID)
	r.mu.Unlock()

	if ok {
		e.close()
	}
}

// Len reports how many users currently hold a store.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close drops every store.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[uint]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.close()
	}
}

func (e *entry) close() {
	for _, unsubscribe := range e.unsubscribes {
		unsubscribe()
	}
	e.unsubscribes = nil
}
