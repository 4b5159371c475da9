package stats

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument wraps b so every increment is mirrored into the
// resque.stat up-down counter of meter, tagged with the counter name.
// Clear is not mirrored.
func Instrument(b Backend, meter metric.Meter) Backend {
	counter, err := meter.Int64UpDownCounter(
		"resque.stat",
		metric.WithDescription("Changes applied to named resque counters"),
		metric.WithUnit("{count}"),
	)
	if err != nil {
		return b
	}
	return &instrumented{Backend: b, counter: counter}
}

type instrumented struct {
	Backend
	counter metric.Int64UpDownCounter
}

func (i *instrumented) IncrBy(ctx context.Context, name string, n int64) (int64, error) {
	v, err := i.Backend.IncrBy(ctx, name, n)
	if err == nil {
		i.counter.Add(ctx, n, metric.WithAttributes(attribute.String("name", name)))
	}
	return v, err
}
