package queue

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/xraph/resque"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store/memory"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewService(st, keyspace.New("resque"), nil), st
}

func payload(handler string) *job.Payload {
	return &job.Payload{HandlerName: handler, JobID: id.NewJobID()}
}

// ---------------------------------------------------------------------------
// Push / Pop
// ---------------------------------------------------------------------------

func TestPushPop_FIFO(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	const n = 25
	want := make([]string, n)
	for i := range n {
		p := payload("H")
		want[i] = p.JobID.String()
		if err := svc.Push(ctx, "q", p); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	for i := range n {
		p, ok, err := svc.Pop(ctx, "q")
		if err != nil || !ok {
			t.Fatalf("Pop %d = %v, %v", i, ok, err)
		}
		if p.JobID.String() != want[i] {
			t.Fatalf("Pop %d = %s, want %s", i, p.JobID, want[i])
		}
	}
	p, ok, err := svc.Pop(ctx, "q")
	if err != nil || ok || p != nil {
		t.Fatalf("Pop past end = %v, %v, %v; want absent", p, ok, err)
	}
}

func TestPush_RejectsEmptyQueue(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	if err := svc.Push(context.Background(), "", payload("H")); !errors.Is(err, resque.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestPop_MalformedPayloadIsAbsent(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	st := memory.New()
	ks := keyspace.New("resque")
	svc := NewService(st, ks, slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	_ = st.RPush(ctx, ks.Queue("q"), []byte("not json"))
	_ = svc.Push(ctx, "q", payload("Good"))

	p, ok, err := svc.Pop(ctx, "q")
	if err != nil || ok || p != nil {
		t.Fatalf("Pop malformed = %v, %v, %v; want absent", p, ok, err)
	}
	if !strings.Contains(logs.String(), "malformed") {
		t.Errorf("expected a debug log line, got %q", logs.String())
	}
	p, ok, _ = svc.Pop(ctx, "q")
	if !ok || p.HandlerName != "Good" {
		t.Fatalf("next Pop = %v, %v; want Good", p, ok)
	}
}

// ---------------------------------------------------------------------------
// Size / Clear / registry
// ---------------------------------------------------------------------------

func TestSize_PushesMinusPops(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct{ pushes, pops int }{{0, 0}, {5, 0}, {5, 3}, {7, 7}}
	for _, tt := range tests {
		q := "q" + strings.Repeat("x", tt.pushes) + strings.Repeat("y", tt.pops)
		for range tt.pushes {
			_ = svc.Push(ctx, q, payload("H"))
		}
		for range tt.pops {
			_, _, _ = svc.Pop(ctx, q)
		}
		n, err := svc.Size(ctx, q)
		if err != nil {
			t.Fatalf("Size: %v", err)
		}
		if n != int64(tt.pushes-tt.pops) {
			t.Errorf("Size after %d pushes, %d pops = %d", tt.pushes, tt.pops, n)
		}
	}

	if n, _ := svc.Size(ctx, "never-pushed"); n != 0 {
		t.Errorf("Size(unknown) = %d, want 0", n)
	}
}

func TestClear_KeepsRegistration(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	for range 3 {
		_ = svc.Push(ctx, "mail", payload("H"))
	}
	removed, err := svc.Clear(ctx, "mail")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Errorf("Clear removed %d, want 3", removed)
	}
	if n, _ := svc.Size(ctx, "mail"); n != 0 {
		t.Errorf("Size after Clear = %d, want 0", n)
	}
	names, _ := svc.List(ctx)
	if len(names) != 1 || names[0] != "mail" {
		t.Fatalf("List after Clear = %v, want [mail]", names)
	}
}

func TestPopDrain_KeepsRegistration(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	_ = svc.Push(ctx, "mail", payload("H"))
	_, _, _ = svc.Pop(ctx, "mail")

	names, _ := svc.List(ctx)
	if len(names) != 1 || names[0] != "mail" {
		t.Fatalf("List after drain = %v, want [mail]", names)
	}
}

func TestList_SortedAndDeduplicated(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	if names, _ := svc.List(ctx); len(names) != 0 {
		t.Fatalf("List on empty store = %v", names)
	}
	for _, q := range []string{"c", "a", "b", "a"} {
		_ = svc.Push(ctx, q, payload("H"))
	}
	names, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(names, ",") != "a,b,c" {
		t.Fatalf("List = %v, want [a b c]", names)
	}
}

func TestRemoveQueue(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	_ = svc.Push(ctx, "a", payload("H"))
	_ = svc.Push(ctx, "b", payload("H"))
	if err := svc.RemoveQueue(ctx, "a"); err != nil {
		t.Fatalf("RemoveQueue: %v", err)
	}
	names, _ := svc.List(ctx)
	if len(names) != 1 || names[0] != "b" {
		t.Fatalf("List = %v, want [b]", names)
	}
	if n, _ := svc.Size(ctx, "a"); n != 0 {
		t.Errorf("Size(a) = %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Peek
// ---------------------------------------------------------------------------

func TestPeek(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	for _, h := range []string{"A", "B", "C", "D"} {
		_ = svc.Push(ctx, "q", payload(h))
	}

	tests := []struct {
		start, count int64
		want         string
	}{
		{0, 1, "A"},
		{1, 2, "BC"},
		{2, 10, "CD"},
		{9, 1, ""},
		{0, 0, ""},
	}
	for _, tt := range tests {
		got, err := svc.Peek(ctx, "q", tt.start, tt.count)
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		var sb strings.Builder
		for _, p := range got {
			sb.WriteString(p.HandlerName)
		}
		if sb.String() != tt.want {
			t.Errorf("Peek(%d,%d) = %q, want %q", tt.start, tt.count, sb.String(), tt.want)
		}
	}
	if n, _ := svc.Size(ctx, "q"); n != 4 {
		t.Errorf("Peek consumed payloads: size = %d", n)
	}
}

// ---------------------------------------------------------------------------
// Store failures and isolation
// ---------------------------------------------------------------------------

func TestStoreFailurePropagates(t *testing.T) {
	t.Parallel()
	svc, st := newService(t)
	ctx := context.Background()
	_ = st.Close()

	if err := svc.Push(ctx, "q", payload("H")); !errors.Is(err, resque.ErrStoreClosed) {
		t.Errorf("Push error = %v, want ErrStoreClosed", err)
	}
	if _, _, err := svc.Pop(ctx, "q"); !errors.Is(err, resque.ErrStoreClosed) {
		t.Errorf("Pop error = %v, want ErrStoreClosed", err)
	}
	if _, err := svc.Size(ctx, "q"); !errors.Is(err, resque.ErrStoreClosed) {
		t.Errorf("Size error = %v, want ErrStoreClosed", err)
	}
	if _, err := svc.List(ctx); !errors.Is(err, resque.ErrStoreClosed) {
		t.Errorf("List error = %v, want ErrStoreClosed", err)
	}
}

func TestPrefixIsolation(t *testing.T) {
	t.Parallel()
	st := memory.New()
	a := NewService(st, keyspace.New("tenant-a"), nil)
	b := NewService(st, keyspace.New("tenant-b"), nil)
	ctx := context.Background()

	_ = a.Push(ctx, "q", payload("H"))
	if n, _ := b.Size(ctx, "q"); n != 0 {
		t.Errorf("tenant-b sees %d payloads", n)
	}
	if names, _ := b.List(ctx); len(names) != 0 {
		t.Errorf("tenant-b sees queues %v", names)
	}
}
