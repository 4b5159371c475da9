// Package pebble implements store.Store on an embedded Pebble database, for
// single-process deployments that want durable queues without a Redis
// server.
//
// Pebble is a flat ordered key/value store, so the Redis primitives are
// laid out over it:
//
//	v <len> key                 -> expiry (8 bytes, unix nanos, 0 = none) ++ value
//	s <len> key member          -> empty
//	m <len> key                 -> list head ++ list tail (8 bytes each)
//	l <len> key index(8 bytes)  -> list element
//
// <len> is the uvarint length of key, which keeps the encoding injective
// for arbitrary key bytes. A process-wide mutex makes LPop, SetNX and
// IncrBy atomic.
package pebble
