package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/resque"
	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/job"
	mw "github.com/xraph/resque/middleware"
	"github.com/xraph/resque/stats"
)

// Failures returns the failure backend. Unless one was injected with
// WithFailureBackend, a store-backed one is created on first call.
func (eng *Engine) Failures() failure.Backend {
	eng.failureOnce.Do(func() {
		if eng.failures == nil {
			eng.failures = failure.NewStoreBackend(eng.store, eng.keys)
		}
	})
	return eng.failures
}

// RecordFailure records that payload p taken from queue failed on the
// worker identified by workerID. It bumps the failed counter and fires the
// failure hooks. Use failure.FromError to describe a Go error.
func (eng *Engine) RecordFailure(ctx context.Context, queue string, p *job.Payload, info failure.Info, workerID string) (*failure.Failure, error) {
	f := failure.New(queue, p, info, workerID)
	op := &mw.Op{Name: mw.OpRecordFailure, Queue: queue}
	if p != nil {
		op.Handler = p.HandlerName
		op.JobID = p.JobID
	}
	err := eng.run(ctx, op, func(ctx context.Context) error {
		if err := eng.Failures().Record(ctx, f); err != nil {
			return err
		}
		if _, err := eng.stats.Get(stats.Failed).Incr(ctx); err != nil {
			eng.logger.Warn("failed to bump failed counter",
				slog.String("queue", queue),
				slog.String("error", err.Error()),
			)
		}
		eng.extensions.EmitFailureRecorded(ctx, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (eng *Engine) failureReader() (failure.Reader, error) {
	b := eng.Failures()
	if r, ok := b.(failure.Reader); ok {
		return r, nil
	}
	if m, ok := b.(failure.Multi); ok {
		if r, ok := m.Reader(); ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %T cannot list failures", resque.ErrNotSupported, b)
}

// FailureCount returns how many failures are recorded.
func (eng *Engine) FailureCount(ctx context.Context) (int64, error) {
	r, err := eng.failureReader()
	if err != nil {
		return 0, err
	}
	return r.Count(ctx)
}

// ListFailures returns up to limit failures starting at offset, oldest
// first.
func (eng *Engine) ListFailures(ctx context.Context, offset, limit int64) ([]*failure.Failure, error) {
	r, err := eng.failureReader()
	if err != nil {
		return nil, err
	}
	return r.List(ctx, offset, limit)
}

// ClearFailures deletes every recorded failure.
func (eng *Engine) ClearFailures(ctx context.Context) error {
	r, err := eng.failureReader()
	if err != nil {
		return err
	}
	return r.Clear(ctx)
}

// RequeueFailure pushes the payload of the failure at index back onto its
// original queue. The failure record is kept. A failure recorded without
// a payload cannot be requeued.
func (eng *Engine) RequeueFailure(ctx context.Context, index int64) (*job.Job, error) {
	r, err := eng.failureReader()
	if err != nil {
		return nil, err
	}
	f, ok, err := r.Get(ctx, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: index %d", resque.ErrFailureNotFound, index)
	}
	if f.Payload.HandlerName == "" {
		return nil, fmt.Errorf("%w: failure %d has no job payload", resque.ErrInvalidArgument, index)
	}
	p := f.Payload
	if err := eng.Push(ctx, f.Queue, &p); err != nil {
		return nil, err
	}
	return &job.Job{Queue: f.Queue, Payload: p}, nil
}
