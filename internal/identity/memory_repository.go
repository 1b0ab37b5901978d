package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	payload []byte
}

// NewMemoryRepository builds a process-local profile store. The record is
// kept in its encoded form so that reads never alias caller memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Load(_ context.Context) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.payload == nil {
		return Identity{}, ErrNotFound
	}
	return decode(r.payload)
}

func (r *memoryRepository) Save(_ context.Context, id Identity) error {
	payload, err := encode(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = payload
	return nil
}

func (r *memoryRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = nil
	return nil
}
