package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/xraph/resque/id"
	"github.com/xraph/resque/middleware"
)

func newTestOp() *middleware.Op {
	return &middleware.Op{
		Name:    middleware.OpEnqueue,
		Queue:   "default",
		Handler: "send-email",
		JobID:   id.NewJobID(),
	}
}

func TestChain_ExecutionOrder(t *testing.T) {
	var order []string

	mw1 := func(ctx context.Context, _ *middleware.Op, next middleware.Handler) error {
		order = append(order, "mw1-before")
		err := next(ctx)
		order = append(order, "mw1-after")
		return err
	}

	mw2 := func(ctx context.Context, _ *middleware.Op, next middleware.Handler) error {
		order = append(order, "mw2-before")
		err := next(ctx)
		order = append(order, "mw2-after")
		return err
	}

	chain := middleware.Chain(mw1, mw2)
	handler := func(_ context.Context) error {
		order = append(order, "handler")
		return nil
	}

	if err := chain(context.Background(), newTestOp(), handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want)
		}
	}
}

func TestChain_Empty(t *testing.T) {
	chain := middleware.Chain()
	called := false
	err := chain(context.Background(), newTestOp(), func(_ context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler not called with empty chain")
	}
}

func TestChain_PropagatesError(t *testing.T) {
	mw := func(ctx context.Context, _ *middleware.Op, next middleware.Handler) error {
		return next(ctx)
	}
	chain := middleware.Chain(mw)
	want := errors.New("handler error")

	err := chain(context.Background(), newTestOp(), func(_ context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestChain_ShortCircuit(t *testing.T) {
	blocked := errors.New("blocked")
	mw := func(_ context.Context, _ *middleware.Op, _ middleware.Handler) error {
		return blocked
	}
	called := false
	err := middleware.Chain(mw)(context.Background(), newTestOp(), func(_ context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, blocked) {
		t.Fatalf("expected %v, got %v", blocked, err)
	}
	if called {
		t.Fatal("handler should not run after short-circuit")
	}
}

func TestChain_HandlerUpdatesOp(t *testing.T) {
	var seen id.JobID
	outer := func(ctx context.Context, op *middleware.Op, next middleware.Handler) error {
		err := next(ctx)
		seen = op.JobID
		return err
	}
	op := &middleware.Op{Name: middleware.OpPop, Queue: "default"}
	jobID := id.NewJobID()

	err := middleware.Chain(outer)(context.Background(), op, func(_ context.Context) error {
		op.JobID = jobID
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != jobID {
		t.Fatalf("outer middleware saw %s, want %s", seen, jobID)
	}
}

func TestRecover_CatchesPanic(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	m := middleware.Recover(logger)

	err := m(context.Background(), newTestOp(), func(_ context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from panic")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not mention panic value", err)
	}
}

func TestRecover_NoPanic(t *testing.T) {
	m := middleware.Recover(slog.New(slog.DiscardHandler))
	if err := m(context.Background(), newTestOp(), func(_ context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogging_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := middleware.Logging(logger)
	want := errors.New("store down")

	err := m(context.Background(), newTestOp(), func(_ context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	out := buf.String()
	for _, s := range []string{"resque operation failed", "op=enqueue", "queue=default", "store down"} {
		if !strings.Contains(out, s) {
			t.Errorf("log output missing %q: %s", s, out)
		}
	}
}

func TestLogging_LogsSuccessAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := middleware.Logging(logger)

	if err := m(context.Background(), newTestOp(), func(_ context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Errorf("expected debug record, got %s", buf.String())
	}
}
