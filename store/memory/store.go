// Package memory provides an in-process store.Store for tests and
// single-process deployments that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store keeps the committed snapshot and event log in memory.
type Store struct {
	mu     sync.RWMutex
	state  *store.Snapshot
	events []*event.Event
	closed bool
}

// New creates an empty memory store.
func New() *Store {
	return &Store{}
}

// Load implements store.Store.
func (s *Store) Load(_ context.Context) (*store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	if s.state == nil {
		return nil, store.ErrNotInitialized
	}
	return s.state.Clone(), nil
}

// Commit implements store.Store.
func (s *Store) Commit(ctx context.Context, cs *store.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	if s.state == nil {
		s.state = store.NewSnapshot()
	}
	s.state.Apply(cs)
	for _, evt := range cs.Events {
		cp := *evt
		s.events = append(s.events, &cp)
	}
	return nil
}

// Events implements store.Store.
func (s *Store) Events(_ context.Context, opts event.ListOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	matched := opts.Filter(s.events)
	out := make([]*event.Event, len(matched))
	for i, evt := range matched {
		cp := *evt
		out[i] = &cp
	}
	return out, nil
}

// Migrate is a no-op.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Subsequent calls fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
