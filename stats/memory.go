package stats

import (
	"context"
	"sync"
	"sync/atomic"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps counters in process memory.
type MemoryBackend struct {
	counters sync.Map // name -> *atomic.Int64
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (b *MemoryBackend) counter(name string) *atomic.Int64 {
	if c, ok := b.counters.Load(name); ok {
		return c.(*atomic.Int64)
	}
	c, _ := b.counters.LoadOrStore(name, new(atomic.Int64))
	return c.(*atomic.Int64)
}

// Get returns the counter value.
func (b *MemoryBackend) Get(_ context.Context, name string) (int64, error) {
	return b.counter(name).Load(), nil
}

// IncrBy adds n to the counter.
func (b *MemoryBackend) IncrBy(_ context.Context, name string, n int64) (int64, error) {
	return b.counter(name).Add(n), nil
}

// Clear resets the counter to zero.
func (b *MemoryBackend) Clear(_ context.Context, name string) error {
	b.counter(name).Store(0)
	return nil
}
