// Package observability provides an OpenTelemetry metrics extension for
// resque. MetricsExtension implements the ext lifecycle hooks and records
// system-wide counters for enqueues, dequeues, cleared payloads, status
// changes and recorded failures.
//
// For per-operation tracing and latency metrics, see the middleware
// package: middleware.Tracing() and middleware.Metrics().
package observability
