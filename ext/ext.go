package ext

import (
	"context"

	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/status"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Queue hooks
// ──────────────────────────────────────────────────

// JobEnqueued is called after a payload is pushed.
type JobEnqueued interface {
	OnJobEnqueued(ctx context.Context, j *job.Job) error
}

// JobDequeued is called after a payload is popped.
type JobDequeued interface {
	OnJobDequeued(ctx context.Context, j *job.Job) error
}

// QueueCleared is called after a queue is cleared.
type QueueCleared interface {
	OnQueueCleared(ctx context.Context, queue string, removed int64) error
}

// ──────────────────────────────────────────────────
// Status and failure hooks
// ──────────────────────────────────────────────────

// StatusChanged is called after a tracked job changes state.
type StatusChanged interface {
	OnStatusChanged(ctx context.Context, jobID id.JobID, state status.State) error
}

// FailureRecorded is called after a failure was recorded.
type FailureRecorded interface {
	OnFailureRecorded(ctx context.Context, f *failure.Failure) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called when the engine closes.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
