package failure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store"
)

var _ Backend = (*StoreBackend)(nil)

// Store is the slice of store.Store the store backend needs.
type Store interface {
	store.ListStore

	// Del removes keys of any type.
	Del(ctx context.Context, keys ...string) error
}

// StoreBackend appends failures to the <prefix>:failed list.
type StoreBackend struct {
	store Store
	keys  keyspace.Keyspace
}

// NewStoreBackend creates the default failure backend.
func NewStoreBackend(s Store, keys keyspace.Keyspace) *StoreBackend {
	return &StoreBackend{store: s, keys: keys}
}

// Record appends f to the failure list.
func (b *StoreBackend) Record(ctx context.Context, f *Failure) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("resque/failure: encode: %w", err)
	}
	if err := b.store.RPush(ctx, b.keys.Failed(), raw); err != nil {
		return fmt.Errorf("resque/failure: record: %w", err)
	}
	return nil
}

// Count returns the number of recorded failures.
func (b *StoreBackend) Count(ctx context.Context) (int64, error) {
	n, err := b.store.LLen(ctx, b.keys.Failed())
	if err != nil {
		return 0, fmt.Errorf("resque/failure: count: %w", err)
	}
	return n, nil
}

// List returns up to limit failures starting at offset, oldest first.
func (b *StoreBackend) List(ctx context.Context, offset, limit int64) ([]*Failure, error) {
	if limit <= 0 || offset < 0 {
		return []*Failure{}, nil
	}
	items, err := b.store.LRange(ctx, b.keys.Failed(), offset, offset+limit-1)
	if err != nil {
		return nil, fmt.Errorf("resque/failure: list: %w", err)
	}
	out := make([]*Failure, 0, len(items))
	for i, raw := range items {
		var f Failure
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("resque/failure: decode record %d: %w", offset+int64(i), err)
		}
		out = append(out, &f)
	}
	return out, nil
}

// Get returns the failure at index, or ok=false when out of range.
func (b *StoreBackend) Get(ctx context.Context, index int64) (*Failure, bool, error) {
	fs, err := b.List(ctx, index, 1)
	if err != nil {
		return nil, false, err
	}
	if len(fs) == 0 {
		return nil, false, nil
	}
	return fs[0], true, nil
}

// Clear deletes every recorded failure.
func (b *StoreBackend) Clear(ctx context.Context) error {
	if err := b.store.Del(ctx, b.keys.Failed()); err != nil {
		return fmt.Errorf("resque/failure: clear: %w", err)
	}
	return nil
}
