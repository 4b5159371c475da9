// Package store defines the aggregate backing-store contract.
//
// The core treats the store as an opaque provider of a few primitives:
// set-add / set-members, list append-to-tail / pop-from-head / length,
// delete, plain values with optional TTL, and an integer counter. Each
// primitive is assumed atomic on its own; the core composes them without
// transactions and never retries a failed call.
//
// # Available Backends
//
//   - store/redis: Redis through go-redis/v9
//   - store/pebble: embedded Pebble database for single-host deployments
//   - store/memory: in-memory store for development and testing
//
// store/storetest holds a conformance suite every backend runs.
//
// # Usage
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	r, err := resque.New(resque.WithStore(s))
package store
