// Package session holds the current signed-in identity and mirrors every
// change to the profile repository.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/artsi-ai/artsi/internal/identity"
)

// Store is the single in-memory holder of the current identity plus a
// loading flag. It starts in the loading state until the owner calls
// EndOperation after bootstrap.
type Store struct {
	repo identity.Repository

	mu      sync.RWMutex
	current *identity.Identity
	loading bool
}

// NewStore builds a store backed by repo.
func NewStore(repo identity.Repository) *Store {
	return &Store{repo: repo, loading: true}
}

// Restore reads the persisted identity, installs it in memory and returns it.
// A missing record yields nil without error.
func (s *Store) Restore(ctx context.Context) (*identity.Identity, error) {
	id, err := s.repo.Load(ctx)
	if errors.Is(err, identity.ErrNotFound) {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	restored := id
	return &restored, nil
}

// Write persists id and then replaces the in-memory value. When persistence
// fails the previous value stays in place.
func (s *Store) Write(ctx context.Context, id identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, id); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.current = &id
	return nil
}

// Clear removes the persisted and in-memory identity.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = nil
	return nil
}

// Current returns a copy of the current identity or nil.
func (s *Store) Current() *identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Loading reports whether bootstrap or an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// BeginOperation sets the loading flag. It returns false when the flag is
// already set, so a second concurrent operation is rejected.
func (s *Store) BeginOperation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// EndOperation clears the loading flag.
func (s *Store) EndOperation() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Snapshot is the read model served to clients.
type Snapshot struct {
	User            *identity.Identity `json:"user"`
	Loading         bool               `json:"loading"`
	IsAuthenticated bool               `json:"isAuthenticated"`
}

// Snapshot returns a consistent view of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Loading: s.loading, IsAuthenticated: s.current != nil}
	if s.current != nil {
		id := *s.current
		snap.User = &id
	}
	return snap
}
