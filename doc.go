// Package resque provides the engine half of a Redis-style background job
// queue: named FIFO queues of JSON job payloads, per-job status tracking,
// pluggable failure recording, worker discovery, and named statistics.
//
// Resque is a library. The process that pops a job and runs its code lives
// outside of it; this module owns the queueing and the bookkeeping around
// execution.
//
// # Quick Start
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	r, err := resque.New(
//	    resque.WithStore(redisstore.New(client)),
//	    resque.WithKeyPrefix("resque"),
//	)
//	eng, err := engine.Build(r)
//	jobID, err := eng.Enqueue(ctx, "mail", "SendWelcome", map[string]any{"user": 42},
//	    engine.WithTrackStatus())
//
// # Architecture
//
// Each subsystem (queue, status, failure, worker, stats) defines the narrow
// slice of the backing store it needs. A single backend (store/redis,
// store/memory, store/pebble) implements the full store.Store contract and
// satisfies all of them. The engine package wires the subsystems together.
//
// Job IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based identifiers.
package resque
