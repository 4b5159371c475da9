// Package stats provides named integer counters scoped to a keyspace.
//
// Counters live in a [Backend]: [StoreBackend] keeps them in the backing
// store under <prefix>:stat:<name> so every process sharing the store sees
// the same totals; [MemoryBackend] keeps them in this process only.
// [Instrument] mirrors every change into an OpenTelemetry up-down counter.
//
//	s := stats.New(backend)
//	_, _ = s.Get(stats.Processed).Incr(ctx)
//	n, _ := s.Get(stats.Failed).Value(ctx)
package stats
