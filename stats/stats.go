package stats

import (
	"context"
	"fmt"

	"github.com/xraph/resque"
	"github.com/xraph/resque/keyspace"
)

// Well-known counter names.
const (
	Processed = "processed"
	Failed    = "failed"
)

// Backend stores counters.
type Backend interface {
	// Get returns the counter value; 0 when unset.
	Get(ctx context.Context, name string) (int64, error)
	// IncrBy atomically adds n and returns the new value.
	IncrBy(ctx context.Context, name string, n int64) (int64, error)
	// Clear resets the counter.
	Clear(ctx context.Context, name string) error
}

// NewBackend selects a backend by implementation name (see
// resque.StatisticsStore and resque.StatisticsMemory).
func NewBackend(impl string, s Store, keys keyspace.Keyspace) (Backend, error) {
	switch impl {
	case resque.StatisticsStore, "":
		if s == nil {
			return nil, resque.ErrNoStore
		}
		return NewStoreBackend(s, keys), nil
	case resque.StatisticsMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", resque.ErrUnknownStatistics, impl)
	}
}

// Stats hands out counter handles.
type Stats struct {
	backend Backend
}

// New returns Stats over b.
func New(b Backend) *Stats { return &Stats{backend: b} }

// Get returns the handle for name. Handles are cheap; nothing is read
// until a method is called.
func (s *Stats) Get(name string) *Stat {
	return &Stat{name: name, backend: s.backend}
}

// Stat is a handle to one counter.
type Stat struct {
	name    string
	backend Backend
}

// Name returns the counter name.
func (s *Stat) Name() string { return s.name }

// Value returns the current value.
func (s *Stat) Value(ctx context.Context) (int64, error) {
	return s.backend.Get(ctx, s.name)
}

// Incr adds one.
func (s *Stat) Incr(ctx context.Context) (int64, error) { return s.IncrBy(ctx, 1) }

// IncrBy adds n.
func (s *Stat) IncrBy(ctx context.Context, n int64) (int64, error) {
	return s.backend.IncrBy(ctx, s.name, n)
}

// Decr subtracts one.
func (s *Stat) Decr(ctx context.Context) (int64, error) { return s.IncrBy(ctx, -1) }

// DecrBy subtracts n.
func (s *Stat) DecrBy(ctx context.Context, n int64) (int64, error) { return s.IncrBy(ctx, -n) }

// Clear resets the counter.
func (s *Stat) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx, s.name)
}
