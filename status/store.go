package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/resque"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store"
)

var _ Tracker = (*StoreTracker)(nil)

// Store is the slice of store.Store the tracker needs.
type Store interface {
	store.ValueStore

	// Del removes keys of any type.
	Del(ctx context.Context, keys ...string) error
}

// StoreTracker keeps one JSON record per job under <prefix>:status:<id>.
type StoreTracker struct {
	store Store
	keys  keyspace.Keyspace
	ttl   time.Duration
	now   func() time.Time
}

// TrackerOption configures a StoreTracker.
type TrackerOption func(*StoreTracker)

// WithTTL sets the expiry applied when a record reaches a terminal state.
// Zero keeps terminal records forever.
func WithTTL(d time.Duration) TrackerOption {
	return func(t *StoreTracker) { t.ttl = d }
}

// WithClock overrides the time source for record timestamps.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *StoreTracker) { t.now = now }
}

// NewStoreTracker creates a store-backed tracker.
func NewStoreTracker(s Store, keys keyspace.Keyspace, opts ...TrackerOption) *StoreTracker {
	t := &StoreTracker{store: s, keys: keys, ttl: 24 * time.Hour, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Create writes a queued record for jobID.
func (t *StoreTracker) Create(ctx context.Context, jobID id.JobID) error {
	if jobID.IsNil() {
		return fmt.Errorf("%w: nil job id", resque.ErrInvalidArgument)
	}
	now := t.now().UTC()
	b, err := json.Marshal(&Record{JobID: jobID, State: StateQueued, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("resque/status: create %s: %w", jobID, err)
	}
	ok, err := t.store.SetNX(ctx, t.keys.Status(jobID.String()), b, 0)
	if err != nil {
		return fmt.Errorf("resque/status: create %s: %w", jobID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", resque.ErrStatusExists, jobID)
	}
	return nil
}

// Update moves the record for jobID to state.
func (t *StoreTracker) Update(ctx context.Context, jobID id.JobID, state State) error {
	if !state.Valid() {
		return fmt.Errorf("%w: unknown status %q", resque.ErrInvalidArgument, state)
	}
	rec, ok, err := t.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", resque.ErrStatusNotFound, jobID)
	}
	if !CanTransition(rec.State, state) {
		return fmt.Errorf("%w: %s -> %s", resque.ErrInvalidTransition, rec.State, state)
	}

	rec.State = state
	rec.UpdatedAt = t.now().UTC()
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("resque/status: update %s: %w", jobID, err)
	}
	var ttl time.Duration
	if state.Terminal() {
		ttl = t.ttl
	}
	if err := t.store.Set(ctx, t.keys.Status(jobID.String()), b, ttl); err != nil {
		return fmt.Errorf("resque/status: update %s: %w", jobID, err)
	}
	return nil
}

// Get returns the record for jobID.
func (t *StoreTracker) Get(ctx context.Context, jobID id.JobID) (*Record, bool, error) {
	b, err := t.store.Get(ctx, t.keys.Status(jobID.String()))
	if errors.Is(err, store.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resque/status: get %s: %w", jobID, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, false, fmt.Errorf("resque/status: decode %s: %w", jobID, err)
	}
	return &rec, true, nil
}

// IsTracking reports whether jobID has a record.
func (t *StoreTracker) IsTracking(ctx context.Context, jobID id.JobID) (bool, error) {
	_, ok, err := t.Get(ctx, jobID)
	return ok, err
}

// Stop deletes the record for jobID.
func (t *StoreTracker) Stop(ctx context.Context, jobID id.JobID) error {
	if err := t.store.Del(ctx, t.keys.Status(jobID.String())); err != nil {
		return fmt.Errorf("resque/status: stop %s: %w", jobID, err)
	}
	return nil
}
