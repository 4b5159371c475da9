package engine

import (
	"context"
	"fmt"

	"github.com/xraph/resque"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	mw "github.com/xraph/resque/middleware"
)

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	trackStatus bool
}

// WithTrackStatus creates a queued status record for the job after it is
// pushed.
func WithTrackStatus() EnqueueOption {
	return func(o *enqueueOptions) { o.trackStatus = true }
}

// Enqueue pushes a new job for handler onto queue and returns its id.
//
// args must be nil or encode to a JSON object; anything else fails with
// resque.ErrInvalidArgument before the store is touched. When status
// tracking was requested and creating the record fails, the returned id
// is still valid: the job is already queued.
func (eng *Engine) Enqueue(ctx context.Context, queue, handler string, args any, opts ...EnqueueOption) (id.JobID, error) {
	if queue == "" {
		return id.JobID{}, fmt.Errorf("%w: empty queue name", resque.ErrInvalidArgument)
	}
	if handler == "" {
		return id.JobID{}, fmt.Errorf("%w: empty handler name", resque.ErrInvalidArgument)
	}
	a, err := job.NewArgs(args)
	if err != nil {
		return id.JobID{}, err
	}

	var o enqueueOptions
	for _, opt := range opts {
		opt(&o)
	}

	p := &job.Payload{HandlerName: handler, Args: a, JobID: id.NewJobID()}
	pushed := false
	op := &mw.Op{Name: mw.OpEnqueue, Queue: queue, Handler: handler, JobID: p.JobID}
	err = eng.run(ctx, op, func(ctx context.Context) error {
		if err := eng.queues.Push(ctx, queue, p); err != nil {
			return err
		}
		pushed = true
		eng.extensions.EmitJobEnqueued(ctx, &job.Job{Queue: queue, Payload: *p})
		if o.trackStatus {
			return eng.Status().Create(ctx, p.JobID)
		}
		return nil
	})
	if !pushed {
		return id.JobID{}, err
	}
	return p.JobID, err
}

// EnqueueDefinition enqueues a job through a typed definition, using the
// definition's queue and status tracking.
func EnqueueDefinition[T any](ctx context.Context, eng *Engine, def *job.Definition[T], args T) (id.JobID, error) {
	a, err := def.Args(args)
	if err != nil {
		return id.JobID{}, fmt.Errorf("enqueue %q: %w", def.Name, err)
	}
	var opts []EnqueueOption
	if def.Opts.TrackStatus {
		opts = append(opts, WithTrackStatus())
	}
	return eng.Enqueue(ctx, def.Opts.Queue, def.Name, a, opts...)
}
