package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/resque/ext"
	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/status"
)

// meterName is the instrumentation scope name for resque metrics.
const meterName = "github.com/xraph/resque"

// Compile-time interface checks.
var (
	_ ext.Extension       = (*MetricsExtension)(nil)
	_ ext.JobEnqueued     = (*MetricsExtension)(nil)
	_ ext.JobDequeued     = (*MetricsExtension)(nil)
	_ ext.QueueCleared    = (*MetricsExtension)(nil)
	_ ext.StatusChanged   = (*MetricsExtension)(nil)
	_ ext.FailureRecorded = (*MetricsExtension)(nil)
)

// MetricsExtension records lifecycle counters through an OTel meter.
// Register it as an extension to track enqueue and dequeue rates per
// queue, failure counts, and status transitions.
type MetricsExtension struct {
	JobEnqueued     metric.Int64Counter
	JobDequeued     metric.Int64Counter
	PayloadsCleared metric.Int64Counter
	StatusChanged   metric.Int64Counter
	FailureRecorded metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension on the global
// MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension on meter.
// Instrument creation errors fall back to the API's noop instruments.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}
	m.JobEnqueued, _ = meter.Int64Counter("resque.job.enqueued",
		metric.WithDescription("Payloads pushed onto a queue"),
		metric.WithUnit("{job}"))
	m.JobDequeued, _ = meter.Int64Counter("resque.job.dequeued",
		metric.WithDescription("Payloads popped from a queue"),
		metric.WithUnit("{job}"))
	m.PayloadsCleared, _ = meter.Int64Counter("resque.queue.cleared",
		metric.WithDescription("Payloads deleted by queue clears"),
		metric.WithUnit("{job}"))
	m.StatusChanged, _ = meter.Int64Counter("resque.status.changed",
		metric.WithDescription("Status transitions of tracked jobs"),
		metric.WithUnit("{transition}"))
	m.FailureRecorded, _ = meter.Int64Counter("resque.failure.recorded",
		metric.WithDescription("Failures stored by the failure backend"),
		metric.WithUnit("{failure}"))
	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnJobEnqueued implements ext.JobEnqueued.
func (m *MetricsExtension) OnJobEnqueued(ctx context.Context, j *job.Job) error {
	m.JobEnqueued.Add(ctx, 1, queueAttr(j.Queue))
	return nil
}

// OnJobDequeued implements ext.JobDequeued.
func (m *MetricsExtension) OnJobDequeued(ctx context.Context, j *job.Job) error {
	m.JobDequeued.Add(ctx, 1, queueAttr(j.Queue))
	return nil
}

// OnQueueCleared implements ext.QueueCleared.
func (m *MetricsExtension) OnQueueCleared(ctx context.Context, queue string, removed int64) error {
	m.PayloadsCleared.Add(ctx, removed, queueAttr(queue))
	return nil
}

// OnStatusChanged implements ext.StatusChanged.
func (m *MetricsExtension) OnStatusChanged(ctx context.Context, _ id.JobID, state status.State) error {
	m.StatusChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(state))))
	return nil
}

// OnFailureRecorded implements ext.FailureRecorded.
func (m *MetricsExtension) OnFailureRecorded(ctx context.Context, f *failure.Failure) error {
	m.FailureRecorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", f.Queue),
		attribute.String("exception", f.Exception),
	))
	return nil
}

func queueAttr(q string) metric.AddOption {
	return metric.WithAttributes(attribute.String("queue", q))
}
