package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/resque"
	"github.com/xraph/resque/ext"
	"github.com/xraph/resque/failure"
	"github.com/xraph/resque/keyspace"
	mw "github.com/xraph/resque/middleware"
	"github.com/xraph/resque/observability"
	"github.com/xraph/resque/queue"
	"github.com/xraph/resque/stats"
	"github.com/xraph/resque/status"
	"github.com/xraph/resque/store"
	"github.com/xraph/resque/worker"
)

const instrumentationName = "github.com/xraph/resque"

// Engine wraps a Resque handle with typed subsystem access.
// Use Build() to create one from a handle.
type Engine struct {
	r          *resque.Resque
	store      store.Store
	keys       keyspace.Keyspace
	extensions *ext.Registry
	queues     *queue.Service
	stats      *stats.Stats
	workers    *worker.Registry
	discoverer *worker.Discoverer
	enumerator worker.Enumerator
	mws        []mw.Middleware
	chain      mw.Middleware
	logger     *slog.Logger

	// Constructed on first use unless injected.
	statusOnce  sync.Once
	tracker     status.Tracker
	failureOnce sync.Once
	failures    failure.Backend

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) {
		eng.extensions.Register(e)
	}
}

// WithMiddleware adds middleware to the engine's operation chain. User
// middleware runs inside the built-in recover, tracing, metrics and
// logging middleware.
func WithMiddleware(m ...mw.Middleware) Option {
	return func(eng *Engine) {
		eng.mws = append(eng.mws, m...)
	}
}

// WithStatusTracker replaces the store-backed status tracker.
func WithStatusTracker(t status.Tracker) Option {
	return func(eng *Engine) {
		eng.tracker = t
	}
}

// WithFailureBackend replaces the store-backed failure backend.
func WithFailureBackend(b failure.Backend) Option {
	return func(eng *Engine) {
		eng.failures = b
	}
}

// WithEnumerator replaces the shell process enumerator used for worker
// discovery.
func WithEnumerator(e worker.Enumerator) Option {
	return func(eng *Engine) {
		eng.enumerator = e
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) {
		eng.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, the metrics middleware and the observability extension use
// it instead of the global one, and statistic increments are mirrored
// to an OTel counter.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// Build creates an Engine from an existing Resque handle.
// The handle's store must implement store.Store.
func Build(r *resque.Resque, opts ...Option) (*Engine, error) {
	if r.Store() == nil {
		return nil, resque.ErrNoStore
	}
	s, ok := r.Store().(store.Store)
	if !ok {
		return nil, fmt.Errorf("resque: store %T does not implement store.Store", r.Store())
	}

	logger := r.Logger()
	config := r.Config()
	keys := keyspace.New(config.KeyPrefix)

	eng := &Engine{
		r:          r,
		store:      s,
		keys:       keys,
		extensions: ext.NewRegistry(logger),
		queues:     queue.NewService(s, keys, logger),
		workers:    worker.NewRegistry(s, keys),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(eng)
	}

	// Statistics backend, mirrored to OTel when a provider was given.
	sb, err := stats.NewBackend(config.StatisticsImplementation, s, keys)
	if err != nil {
		return nil, err
	}
	if eng.meterProvider != nil {
		sb = stats.Instrument(sb, eng.meterProvider.Meter(instrumentationName))
	}
	eng.stats = stats.New(sb)

	if eng.enumerator == nil {
		eng.enumerator = worker.ShellEnumerator{Command: config.ProcessEnumerationCommand}
	}
	eng.discoverer = worker.NewDiscoverer(eng.enumerator, eng.workers,
		worker.WithPattern(config.ProcessEnumerationPattern),
		worker.WithLogger(logger),
	)

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(instrumentationName))
	} else {
		metricsMw = mw.Metrics()
	}

	// Register the observability metrics extension.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		obsExt = observability.NewMetricsExtensionWithMeter(
			eng.meterProvider.Meter(instrumentationName + "/observability"),
		)
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	// Default middleware stack: recover → tracing → metrics → logging.
	defaultMws := []mw.Middleware{
		mw.Recover(logger),
		tracingMw,
		metricsMw,
		mw.Logging(logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)
	eng.chain = mw.Chain(allMws...)

	return eng, nil
}

// run executes fn through the middleware chain.
func (eng *Engine) run(ctx context.Context, op *mw.Op, fn mw.Handler) error {
	return eng.chain(ctx, op, fn)
}

// Close fires the shutdown hooks and disconnects from the store.
func (eng *Engine) Close(ctx context.Context) error {
	eng.extensions.EmitShutdown(ctx)
	return eng.r.Close()
}

// Resque returns the underlying handle.
func (eng *Engine) Resque() *resque.Resque { return eng.r }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Keyspace returns the key layout in use.
func (eng *Engine) Keyspace() keyspace.Keyspace { return eng.keys }

// QueueService returns the queue service.
func (eng *Engine) QueueService() *queue.Service { return eng.queues }

// Stats returns the statistics handle factory.
func (eng *Engine) Stats() *stats.Stats { return eng.stats }

// WorkerRegistry returns the worker registry.
func (eng *Engine) WorkerRegistry() *worker.Registry { return eng.workers }

// Discoverer returns the worker process discoverer.
func (eng *Engine) Discoverer() *worker.Discoverer { return eng.discoverer }
