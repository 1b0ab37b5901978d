package studio

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrArtworkNotFound is returned for unknown artwork IDs.
var ErrArtworkNotFound = errors.New("artwork not found")

// Artwork is one generated image.
type Artwork struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Prompt     string    `json:"prompt"`
	Style      string    `json:"style"`
	URL        string    `json:"url"`
	ArchiveURL string    `json:"archiveUrl,omitempty"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Gallery stores generated artwork.
type Gallery interface {
	Add(ctx context.Context, art Artwork) error
	// List returns the owner's artwork, newest first.
	List(ctx context.Context, ownerID string) ([]Artwork, error)
	Get(ctx context.Context, id string) (Artwork, error)
}

type memoryGallery struct {
	mu    sync.RWMutex
	byID  map[string]Artwork
	order []string
}

// NewMemoryGallery builds a process-local gallery.
func NewMemoryGallery() Gallery {
	return &memoryGallery{byID: make(map[string]Artwork)}
}

func (g *memoryGallery) Add(_ context.Context, art Artwork) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.byID[art.ID]; !exists {
		g.order = append(g.order, art.ID)
	}
	g.byID[art.ID] = art
	return nil
}

func (g *memoryGallery) List(_ context.Context, ownerID string) ([]Artwork, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Artwork, 0)
	for i := len(g.order) - 1; i >= 0; i-- {
		art := g.byID[g.order[i]]
		if art.OwnerID == ownerID {
			out = append(out, art)
		}
	}
	return out, nil
}

func (g *memoryGallery) Get(_ context.Context, id string) (Artwork, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	art, ok := g.byID[id]
	if !ok {
		return Artwork{}, ErrArtworkNotFound
	}
	return art, nil
}
