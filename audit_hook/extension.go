package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/resque/ext"
	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/status"
)

// Compile-time interface checks.
var (
	_ ext.Extension       = (*Extension)(nil)
	_ ext.JobEnqueued     = (*Extension)(nil)
	_ ext.JobDequeued     = (*Extension)(nil)
	_ ext.QueueCleared    = (*Extension)(nil)
	_ ext.StatusChanged   = (*Extension)(nil)
	_ ext.FailureRecorded = (*Extension)(nil)
	_ ext.Shutdown        = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit trail entry.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges resque lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder    Recorder
	enabled     map[string]bool // nil = all enabled
	disabled    map[string]bool
	minSeverity int
	logger      *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Queue hooks ─────────────────────────────────────

// OnJobEnqueued implements ext.JobEnqueued.
func (e *Extension) OnJobEnqueued(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobEnqueued, SeverityInfo, OutcomeSuccess,
		ResourceJob, j.JobID.String(), CategoryJob, "",
		"handler", j.HandlerName,
		"queue", j.Queue,
	)
}

// OnJobDequeued implements ext.JobDequeued.
func (e *Extension) OnJobDequeued(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobDequeued, SeverityInfo, OutcomeSuccess,
		ResourceJob, j.JobID.String(), CategoryJob, "",
		"handler", j.HandlerName,
		"queue", j.Queue,
	)
}

// OnQueueCleared implements ext.QueueCleared.
func (e *Extension) OnQueueCleared(ctx context.Context, queue string, removed int64) error {
	return e.record(ctx, ActionQueueCleared, SeverityWarning, OutcomeSuccess,
		ResourceQueue, queue, CategoryQueue, "",
		"removed", removed,
	)
}

// ── Status and failure hooks ────────────────────────

// OnStatusChanged implements ext.StatusChanged.
func (e *Extension) OnStatusChanged(ctx context.Context, jobID id.JobID, state status.State) error {
	severity, outcome := SeverityInfo, OutcomeSuccess
	if state == status.StateFailed {
		severity, outcome = SeverityWarning, OutcomeFailure
	}
	return e.record(ctx, ActionStatusChanged, severity, outcome,
		ResourceJob, jobID.String(), CategoryJob, "",
		"status", string(state),
	)
}

// OnFailureRecorded implements ext.FailureRecorded.
func (e *Extension) OnFailureRecorded(ctx context.Context, f *failure.Failure) error {
	return e.record(ctx, ActionFailureRecorded, SeverityCritical, OutcomeFailure,
		ResourceFailure, f.ID.String(), CategoryFailure, f.Error,
		"handler", f.Payload.HandlerName,
		"job_id", f.Payload.JobID.String(),
		"queue", f.Queue,
		"worker", f.Worker,
		"exception", f.Exception,
	)
}

// OnShutdown implements ext.Shutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.record(ctx, ActionShutdown, SeverityInfo, OutcomeSuccess,
		ResourceEngine, "", CategoryEngine, "",
	)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	reason string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}
	if e.disabled[action] || severityRank(severity) < e.minSeverity {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}
	if reason != "" {
		meta["error"] = reason
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			slog.String("action", action),
			slog.String("resource_id", resourceID),
			slog.String("error", recErr.Error()),
		)
	}
	return nil
}
