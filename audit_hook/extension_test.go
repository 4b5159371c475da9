package audithook_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	ah "github.com/xraph/resque/audit_hook"
	"github.com/xraph/resque/ext"
	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/status"
)

// ── Mock recorder ────────────────────────────────────

// mockRecorder captures audit events for verification.
type mockRecorder struct {
	mu     sync.Mutex
	events []*ah.AuditEvent
}

func (m *mockRecorder) Record(_ context.Context, evt *ah.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockRecorder) last() *ah.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *mockRecorder) findByAction(action string) *ah.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, evt := range m.events {
		if evt.Action == action {
			return evt
		}
	}
	return nil
}

// ── Test helpers ─────────────────────────────────────

func newTestJob() *job.Job {
	return &job.Job{
		Queue: "default",
		Payload: job.Payload{
			HandlerName: "send-email",
			JobID:       id.NewJobID(),
		},
	}
}

func newTestFailure() *failure.Failure {
	j := newTestJob()
	return failure.New(j.Queue, &j.Payload, failure.FromError(errors.New("smtp timeout")), "host:42:default")
}

// ── Tests ────────────────────────────────────────────

func TestExtension_Name(t *testing.T) {
	e := ah.New(&mockRecorder{})
	if e.Name() != "audit-hook" {
		t.Errorf("expected name %q, got %q", "audit-hook", e.Name())
	}
}

func TestExtension_JobEnqueued(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)
	j := newTestJob()

	if err := e.OnJobEnqueued(context.Background(), j); err != nil {
		t.Fatalf("OnJobEnqueued: %v", err)
	}

	evt := rec.last()
	if evt == nil {
		t.Fatal("no event recorded")
	}
	if evt.Action != ah.ActionJobEnqueued {
		t.Errorf("Action: want %q, got %q", ah.ActionJobEnqueued, evt.Action)
	}
	if evt.Resource != ah.ResourceJob {
		t.Errorf("Resource: want %q, got %q", ah.ResourceJob, evt.Resource)
	}
	if evt.Category != ah.CategoryJob {
		t.Errorf("Category: want %q, got %q", ah.CategoryJob, evt.Category)
	}
	if evt.ResourceID != j.JobID.String() {
		t.Errorf("ResourceID: want %q, got %q", j.JobID.String(), evt.ResourceID)
	}
	if evt.Severity != ah.SeverityInfo {
		t.Errorf("Severity: want %q, got %q", ah.SeverityInfo, evt.Severity)
	}
	if evt.Outcome != ah.OutcomeSuccess {
		t.Errorf("Outcome: want %q, got %q", ah.OutcomeSuccess, evt.Outcome)
	}
	if evt.Metadata["handler"] != "send-email" {
		t.Errorf("Metadata[handler]: want %q, got %v", "send-email", evt.Metadata["handler"])
	}
	if evt.Metadata["queue"] != "default" {
		t.Errorf("Metadata[queue]: want %q, got %v", "default", evt.Metadata["queue"])
	}
}

func TestExtension_QueueCleared(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	if err := e.OnQueueCleared(context.Background(), "reports", 7); err != nil {
		t.Fatalf("OnQueueCleared: %v", err)
	}
	evt := rec.last()
	if evt.Resource != ah.ResourceQueue || evt.ResourceID != "reports" {
		t.Errorf("unexpected resource %s/%s", evt.Resource, evt.ResourceID)
	}
	if evt.Metadata["removed"] != int64(7) {
		t.Errorf("Metadata[removed]: want 7, got %v", evt.Metadata["removed"])
	}
}

func TestExtension_StatusChanged(t *testing.T) {
	tests := []struct {
		state    status.State
		severity string
		outcome  string
	}{
		{status.StateRunning, ah.SeverityInfo, ah.OutcomeSuccess},
		{status.StateCompleted, ah.SeverityInfo, ah.OutcomeSuccess},
		{status.StateFailed, ah.SeverityWarning, ah.OutcomeFailure},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			rec := &mockRecorder{}
			e := ah.New(rec)
			jobID := id.NewJobID()

			if err := e.OnStatusChanged(context.Background(), jobID, tt.state); err != nil {
				t.Fatalf("OnStatusChanged: %v", err)
			}
			evt := rec.last()
			if evt.Severity != tt.severity || evt.Outcome != tt.outcome {
				t.Errorf("got %s/%s, want %s/%s", evt.Severity, evt.Outcome, tt.severity, tt.outcome)
			}
			if evt.Metadata["status"] != string(tt.state) {
				t.Errorf("Metadata[status] = %v", evt.Metadata["status"])
			}
		})
	}
}

func TestExtension_FailureRecorded(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)
	f := newTestFailure()

	if err := e.OnFailureRecorded(context.Background(), f); err != nil {
		t.Fatalf("OnFailureRecorded: %v", err)
	}
	evt := rec.last()
	if evt.Severity != ah.SeverityCritical || evt.Outcome != ah.OutcomeFailure {
		t.Errorf("unexpected severity/outcome %s/%s", evt.Severity, evt.Outcome)
	}
	if evt.Reason != "smtp timeout" {
		t.Errorf("Reason: want %q, got %q", "smtp timeout", evt.Reason)
	}
	if evt.ResourceID != f.ID.String() {
		t.Errorf("ResourceID: want %q, got %q", f.ID.String(), evt.ResourceID)
	}
	if evt.Metadata["worker"] != "host:42:default" {
		t.Errorf("Metadata[worker] = %v", evt.Metadata["worker"])
	}
}

func TestExtension_WithActions_FiltersDisabled(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec, ah.WithActions(ah.ActionQueueCleared, ah.ActionFailureRecorded))
	ctx := context.Background()

	if err := e.OnJobEnqueued(ctx, newTestJob()); err != nil {
		t.Fatalf("OnJobEnqueued: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("expected 0 events (enqueued disabled), got %d", rec.count())
	}

	if err := e.OnQueueCleared(ctx, "q", 1); err != nil {
		t.Fatalf("OnQueueCleared: %v", err)
	}
	if err := e.OnFailureRecorded(ctx, newTestFailure()); err != nil {
		t.Fatalf("OnFailureRecorded: %v", err)
	}
	if rec.count() != 2 {
		t.Errorf("expected 2 events, got %d", rec.count())
	}
}

func TestExtension_WithoutActions(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec, ah.WithoutActions(ah.ActionJobEnqueued, ah.ActionJobDequeued))
	ctx := context.Background()

	_ = e.OnJobEnqueued(ctx, newTestJob())
	_ = e.OnJobDequeued(ctx, newTestJob())
	if rec.count() != 0 {
		t.Fatalf("expected 0 events, got %d", rec.count())
	}
	_ = e.OnQueueCleared(ctx, "q", 3)
	if rec.findByAction(ah.ActionQueueCleared) == nil {
		t.Error("queue.cleared was suppressed")
	}
}

func TestExtension_WithActions_IgnoresUnknown(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec, ah.WithActions("job.exploded"))

	_ = e.OnQueueCleared(context.Background(), "q", 1)
	if rec.count() != 0 {
		t.Errorf("expected 0 events, got %d", rec.count())
	}
}

func TestExtension_WithMinSeverity(t *testing.T) {
	tests := []struct {
		min  string
		want int
	}{
		{ah.SeverityInfo, 4},
		{ah.SeverityWarning, 3},
		{ah.SeverityCritical, 1},
	}
	for _, tt := range tests {
		t.Run(tt.min, func(t *testing.T) {
			rec := &mockRecorder{}
			e := ah.New(rec, ah.WithMinSeverity(tt.min))
			ctx := context.Background()

			_ = e.OnJobEnqueued(ctx, newTestJob())
			_ = e.OnQueueCleared(ctx, "q", 1)
			_ = e.OnStatusChanged(ctx, id.NewJobID(), status.StateFailed)
			_ = e.OnFailureRecorded(ctx, newTestFailure())

			if rec.count() != tt.want {
				t.Errorf("recorded %d events, want %d", rec.count(), tt.want)
			}
		})
	}
}

func TestExtension_RecorderError_DoesNotPropagate(t *testing.T) {
	failingRecorder := ah.RecorderFunc(func(_ context.Context, _ *ah.AuditEvent) error {
		return errors.New("audit backend down")
	})
	e := ah.New(failingRecorder, ah.WithLogger(slog.New(slog.DiscardHandler)))

	if err := e.OnJobEnqueued(context.Background(), newTestJob()); err != nil {
		t.Fatalf("expected no error (audit failure swallowed), got: %v", err)
	}
}

func TestExtension_ViaRegistry(t *testing.T) {
	rec := &mockRecorder{}
	reg := ext.NewRegistry(slog.New(slog.DiscardHandler))
	reg.Register(ah.New(rec))

	ctx := context.Background()
	j := newTestJob()

	reg.EmitJobEnqueued(ctx, j)
	reg.EmitJobDequeued(ctx, j)
	reg.EmitQueueCleared(ctx, j.Queue, 0)
	reg.EmitStatusChanged(ctx, j.JobID, status.StateRunning)
	reg.EmitFailureRecorded(ctx, newTestFailure())
	reg.EmitShutdown(ctx)

	allActions := ah.AllActions()
	if rec.count() != len(allActions) {
		t.Fatalf("expected %d events, got %d", len(allActions), rec.count())
	}
	for _, action := range allActions {
		if rec.findByAction(action) == nil {
			t.Errorf("missing event for action %q", action)
		}
	}
}
