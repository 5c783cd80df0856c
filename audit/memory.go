package audit

import (
	"context"
	"sync"
)

// InMemorySink buffers entries for the lifetime of the process, useful for
// tests and short-lived CLI invocations that want to inspect raw output
// without touching disk.
type InMemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Write(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// Entries returns a snapshot of everything written so far.
func (s *InMemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
