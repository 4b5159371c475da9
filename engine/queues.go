package engine

import (
	"context"

	"github.com/xraph/resque/job"
	mw "github.com/xraph/resque/middleware"
)

// Push appends an existing payload to queue. It is the low-level path
// behind Enqueue and RequeueFailure; the payload is stored as given.
func (eng *Engine) Push(ctx context.Context, queue string, p *job.Payload) error {
	op := &mw.Op{Name: mw.OpEnqueue, Queue: queue, Handler: p.HandlerName, JobID: p.JobID}
	return eng.run(ctx, op, func(ctx context.Context) error {
		if err := eng.queues.Push(ctx, queue, p); err != nil {
			return err
		}
		eng.extensions.EmitJobEnqueued(ctx, &job.Job{Queue: queue, Payload: *p})
		return nil
	})
}

// Pop removes the head of queue. ok is false when the queue is empty or
// the head was not a valid payload.
func (eng *Engine) Pop(ctx context.Context, queue string) (*job.Job, bool, error) {
	var j *job.Job
	op := &mw.Op{Name: mw.OpPop, Queue: queue}
	err := eng.run(ctx, op, func(ctx context.Context) error {
		p, ok, err := eng.queues.Pop(ctx, queue)
		if err != nil || !ok {
			return err
		}
		op.Handler = p.HandlerName
		op.JobID = p.JobID
		j = &job.Job{Queue: queue, Payload: *p}
		eng.extensions.EmitJobDequeued(ctx, j)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return j, j != nil, nil
}

// Peek returns up to count payloads of queue starting at start, without
// removing them.
func (eng *Engine) Peek(ctx context.Context, queue string, start, count int64) ([]*job.Payload, error) {
	return eng.queues.Peek(ctx, queue, start, count)
}

// Size returns the number of pending payloads in queue.
func (eng *Engine) Size(ctx context.Context, queue string) (int64, error) {
	return eng.queues.Size(ctx, queue)
}

// Queues returns every registered queue name, sorted. A queue stays
// registered after it is drained or cleared.
func (eng *Engine) Queues(ctx context.Context) ([]string, error) {
	return eng.queues.List(ctx)
}

// Clear deletes the pending payloads of queue and returns how many were
// removed.
func (eng *Engine) Clear(ctx context.Context, queue string) (int64, error) {
	var removed int64
	op := &mw.Op{Name: mw.OpClear, Queue: queue}
	err := eng.run(ctx, op, func(ctx context.Context) error {
		n, err := eng.queues.Clear(ctx, queue)
		if err != nil {
			return err
		}
		removed = n
		eng.extensions.EmitQueueCleared(ctx, queue, n)
		return nil
	})
	return removed, err
}

// RemoveQueue unregisters queue and deletes its pending payloads.
func (eng *Engine) RemoveQueue(ctx context.Context, queue string) error {
	op := &mw.Op{Name: mw.OpRemoveQueue, Queue: queue}
	return eng.run(ctx, op, func(ctx context.Context) error {
		return eng.queues.RemoveQueue(ctx, queue)
	})
}
