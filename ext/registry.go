package ext

import (
	"context"
	"log/slog"

	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/status"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type jobEnqueuedEntry struct {
	name string
	hook JobEnqueued
}

type jobDequeuedEntry struct {
	name string
	hook JobDequeued
}

type queueClearedEntry struct {
	name string
	hook QueueCleared
}

type statusChangedEntry struct {
	name string
	hook StatusChanged
}

type failureRecordedEntry struct {
	name string
	hook FailureRecorded
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	jobEnqueued     []jobEnqueuedEntry
	jobDequeued     []jobDequeuedEntry
	queueCleared    []queueClearedEntry
	statusChanged   []statusChangedEntry
	failureRecorded []failureRecordedEntry
	shutdown        []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(JobEnqueued); ok {
		r.jobEnqueued = append(r.jobEnqueued, jobEnqueuedEntry{name, h})
	}
	if h, ok := e.(JobDequeued); ok {
		r.jobDequeued = append(r.jobDequeued, jobDequeuedEntry{name, h})
	}
	if h, ok := e.(QueueCleared); ok {
		r.queueCleared = append(r.queueCleared, queueClearedEntry{name, h})
	}
	if h, ok := e.(StatusChanged); ok {
		r.statusChanged = append(r.statusChanged, statusChangedEntry{name, h})
	}
	if h, ok := e.(FailureRecorded); ok {
		r.failureRecorded = append(r.failureRecorded, failureRecordedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitJobEnqueued notifies all extensions that implement JobEnqueued.
func (r *Registry) EmitJobEnqueued(ctx context.Context, j *job.Job) {
	for _, e := range r.jobEnqueued {
		if err := e.hook.OnJobEnqueued(ctx, j); err != nil {
			r.logHookError("OnJobEnqueued", e.name, err)
		}
	}
}

// EmitJobDequeued notifies all extensions that implement JobDequeued.
func (r *Registry) EmitJobDequeued(ctx context.Context, j *job.Job) {
	for _, e := range r.jobDequeued {
		if err := e.hook.OnJobDequeued(ctx, j); err != nil {
			r.logHookError("OnJobDequeued", e.name, err)
		}
	}
}

// EmitQueueCleared notifies all extensions that implement QueueCleared.
func (r *Registry) EmitQueueCleared(ctx context.Context, queue string, removed int64) {
	for _, e := range r.queueCleared {
		if err := e.hook.OnQueueCleared(ctx, queue, removed); err != nil {
			r.logHookError("OnQueueCleared", e.name, err)
		}
	}
}

// EmitStatusChanged notifies all extensions that implement StatusChanged.
func (r *Registry) EmitStatusChanged(ctx context.Context, jobID id.JobID, state status.State) {
	for _, e := range r.statusChanged {
		if err := e.hook.OnStatusChanged(ctx, jobID, state); err != nil {
			r.logHookError("OnStatusChanged", e.name, err)
		}
	}
}

// EmitFailureRecorded notifies all extensions that implement FailureRecorded.
func (r *Registry) EmitFailureRecorded(ctx context.Context, f *failure.Failure) {
	for _, e := range r.failureRecorded {
		if err := e.hook.OnFailureRecorded(ctx, f); err != nil {
			r.logHookError("OnFailureRecorded", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors are never propagated.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
