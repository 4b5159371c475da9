package status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/resque"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTracker(t *testing.T) (*StoreTracker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	st := memory.New(memory.WithClock(clock.Now))
	return NewStoreTracker(st, keyspace.New("resque"), WithTTL(time.Hour), WithClock(clock.Now)), clock
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)
	ctx := context.Background()
	jid := id.NewJobID()

	if ok, _ := tr.IsTracking(ctx, jid); ok {
		t.Fatal("tracking before Create")
	}
	if err := tr.Create(ctx, jid); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec, ok, err := tr.Get(ctx, jid)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if rec.State != StateQueued {
		t.Errorf("State = %s, want queued", rec.State)
	}
	if rec.JobID.String() != jid.String() {
		t.Errorf("JobID = %s, want %s", rec.JobID, jid)
	}
}

func TestCreate_WriteOnce(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)
	ctx := context.Background()
	jid := id.NewJobID()

	_ = tr.Create(ctx, jid)
	_ = tr.Update(ctx, jid, StateRunning)

	if err := tr.Create(ctx, jid); !errors.Is(err, resque.ErrStatusExists) {
		t.Fatalf("second Create error = %v, want ErrStatusExists", err)
	}
	rec, _, _ := tr.Get(ctx, jid)
	if rec.State != StateRunning {
		t.Fatalf("second Create overwrote state: %s", rec.State)
	}
}

func TestCreate_NilID(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)

	if err := tr.Create(context.Background(), id.Nil); !errors.Is(err, resque.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdate_CompletedIsTerminal(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)
	ctx := context.Background()
	jid := id.NewJobID()

	_ = tr.Create(ctx, jid)
	for _, s := range []State{StateRunning, StateCompleted} {
		if err := tr.Update(ctx, jid, s); err != nil {
			t.Fatalf("Update(%s): %v", s, err)
		}
	}
	for _, s := range []State{StateQueued, StateRunning, StateFailed, StateCompleted} {
		if err := tr.Update(ctx, jid, s); !errors.Is(err, resque.ErrInvalidTransition) {
			t.Errorf("Update(completed -> %s) error = %v, want ErrInvalidTransition", s, err)
		}
	}
	rec, _, _ := tr.Get(ctx, jid)
	if rec.State != StateCompleted {
		t.Fatalf("State = %s, want completed", rec.State)
	}
}

func TestUpdate_Heartbeat(t *testing.T) {
	t.Parallel()
	tr, clock := newTracker(t)
	ctx := context.Background()
	jid := id.NewJobID()

	_ = tr.Create(ctx, jid)
	_ = tr.Update(ctx, jid, StateRunning)
	first, _, _ := tr.Get(ctx, jid)

	clock.Advance(time.Minute)
	if err := tr.Update(ctx, jid, StateRunning); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	second, _, _ := tr.Get(ctx, jid)
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("heartbeat did not bump UpdatedAt: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("heartbeat changed CreatedAt")
	}
}

func TestUpdate_Untracked(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)

	err := tr.Update(context.Background(), id.NewJobID(), StateRunning)
	if !errors.Is(err, resque.ErrStatusNotFound) {
		t.Fatalf("error = %v, want ErrStatusNotFound", err)
	}
}

func TestUpdate_UnknownState(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)
	ctx := context.Background()
	jid := id.NewJobID()
	_ = tr.Create(ctx, jid)

	if err := tr.Update(ctx, jid, State("paused")); !errors.Is(err, resque.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestTerminalRecordsExpire(t *testing.T) {
	t.Parallel()
	tr, clock := newTracker(t)
	ctx := context.Background()

	live, done := id.NewJobID(), id.NewJobID()
	_ = tr.Create(ctx, live)
	_ = tr.Create(ctx, done)
	_ = tr.Update(ctx, done, StateFailed)

	clock.Advance(2 * time.Hour)

	if ok, _ := tr.IsTracking(ctx, done); ok {
		t.Error("terminal record survived its TTL")
	}
	if ok, _ := tr.IsTracking(ctx, live); !ok {
		t.Error("non-terminal record expired")
	}
}

func TestStop(t *testing.T) {
	t.Parallel()
	tr, _ := newTracker(t)
	ctx := context.Background()
	jid := id.NewJobID()

	_ = tr.Create(ctx, jid)
	if err := tr.Stop(ctx, jid); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok, _ := tr.Get(ctx, jid); ok {
		t.Fatal("record present after Stop")
	}
	if err := tr.Create(ctx, jid); err != nil {
		t.Fatalf("Create after Stop: %v", err)
	}
}
