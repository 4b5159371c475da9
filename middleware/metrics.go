package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for resque metrics.
const meterName = "github.com/xraph/resque"

// Metrics returns middleware that records per-operation metrics using
// the global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - resque.op.duration (Float64Histogram): operation time in seconds,
//     with attributes: op, queue, status ("ok" or "error")
//   - resque.op.calls (Int64Counter): total operations,
//     with attributes: op, queue, status ("ok" or "error")
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// On error the API returns noop instruments.
	duration, _ := meter.Float64Histogram(
		"resque.op.duration",
		metric.WithDescription("Duration of resque operations in seconds"),
		metric.WithUnit("s"),
	)
	calls, _ := meter.Int64Counter(
		"resque.op.calls",
		metric.WithDescription("Total number of resque operations"),
		metric.WithUnit("{call}"),
	)

	return func(ctx context.Context, op *Op, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("op", op.Name),
			attribute.String("queue", op.Queue),
			attribute.String("status", status),
		)
		duration.Record(ctx, elapsed, attrs)
		calls.Add(ctx, 1, attrs)
		return err
	}
}
