package stats

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store"
)

var _ Backend = (*StoreBackend)(nil)

// Store is the slice of store.Store the store backend needs.
type Store interface {
	store.ValueStore

	// Del removes keys of any type.
	Del(ctx context.Context, keys ...string) error
}

// StoreBackend keeps counters in the backing store.
type StoreBackend struct {
	store Store
	keys  keyspace.Keyspace
}

// NewStoreBackend creates a store-backed counter backend.
func NewStoreBackend(s Store, keys keyspace.Keyspace) *StoreBackend {
	return &StoreBackend{store: s, keys: keys}
}

// Get returns the counter value.
func (b *StoreBackend) Get(ctx context.Context, name string) (int64, error) {
	raw, err := b.store.Get(ctx, b.keys.Stat(name))
	if errors.Is(err, store.ErrNil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resque/stats: get %s: %w", name, err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("resque/stats: get %s: %w", name, store.ErrNotInteger)
	}
	return n, nil
}

// IncrBy adds n to the counter.
func (b *StoreBackend) IncrBy(ctx context.Context, name string, n int64) (int64, error) {
	v, err := b.store.IncrBy(ctx, b.keys.Stat(name), n)
	if err != nil {
		return 0, fmt.Errorf("resque/stats: incr %s: %w", name, err)
	}
	return v, nil
}

// Clear deletes the counter.
func (b *StoreBackend) Clear(ctx context.Context, name string) error {
	if err := b.store.Del(ctx, b.keys.Stat(name)); err != nil {
		return fmt.Errorf("resque/stats: clear %s: %w", name, err)
	}
	return nil
}
