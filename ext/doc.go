// Package ext defines the extension system for resque.
//
// Extensions are notified of lifecycle events and can react to them:
// recording metrics, forwarding failures, writing audit logs.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type AuditExtension struct{ log *slog.Logger }
//
//	func (e *AuditExtension) Name() string { return "audit" }
//
//	func (e *AuditExtension) OnJobEnqueued(ctx context.Context, j *job.Job) error {
//	    e.log.Info("enqueued", "queue", j.Queue, "job_id", j.JobID.String())
//	    return nil
//	}
//
// # Hooks
//
//   - [JobEnqueued]: a payload was pushed onto a queue
//   - [JobDequeued]: a payload was popped from a queue
//   - [StatusChanged]: a tracked job moved to a new state
//   - [FailureRecorded]: a failure was stored by the failure backend
//   - [QueueCleared]: a queue's pending payloads were deleted
//   - [Shutdown]: the engine is closing
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface. Hook errors are logged and
// never propagated.
package ext
