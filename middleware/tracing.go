package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for resque tracing.
const tracerName = "github.com/xraph/resque"

// Tracing returns middleware that wraps each operation in an OpenTelemetry
// span named "resque.<op>". Without a global TracerProvider the noop
// tracer is used.
//
// Span attributes: resque.queue, resque.job.handler, resque.job.id. The
// job attributes are set after the operation so pops report the job they
// returned.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, op *Op, next Handler) error {
		ctx, span := tracer.Start(ctx, "resque."+op.Name,
			trace.WithAttributes(attribute.String("resque.queue", op.Queue)),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if op.Handler != "" {
			span.SetAttributes(attribute.String("resque.job.handler", op.Handler))
		}
		if !op.JobID.IsNil() {
			span.SetAttributes(attribute.String("resque.job.id", op.JobID.String()))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	}
}
