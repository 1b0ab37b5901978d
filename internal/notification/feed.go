package notification

import (
	"context"
	"sync"
	"time"
)

// DefaultFeedSize bounds the number of undelivered notices kept in memory.
const DefaultFeedSize = 50

// Entry is a notice with the time it was raised.
type Entry struct {
	Notice
	At time.Time `json:"at"`
}

// Feed buffers notices until a client drains them. When full, the oldest
// notice is dropped.
type Feed struct {
	mu      sync.Mutex
	size    int
	entries []Entry
	now     func() time.Time
}

// NewFeed builds a feed holding at most size notices.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size, now: time.Now}
}

// Notify implements Notifier.
func (f *Feed) Notify(_ context.Context, notice Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == f.size {
		f.entries = f.entries[1:]
	}
	f.entries = append(f.entries, Entry{Notice: notice, At: f.now().UTC()})
	return nil
}

// Drain returns buffered notices oldest first and empties the feed.
func (f *Feed) Drain() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	f.entries = f.entries[:0]
	return out
}

// Len returns the number of buffered notices.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
