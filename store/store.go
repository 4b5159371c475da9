// Package store defines the backing-store primitive contract. Each
// subsystem (queue, status, failure, worker, stats) declares the narrow
// slice of it that it uses; the composite Store composes them all.
// Backends: Redis, Pebble, and Memory.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNil is returned by LPop and Get when the key holds no value.
var ErrNil = errors.New("store: nil")

// SetStore covers unordered set primitives.
type SetStore interface {
	// SAdd adds members to the set at key. Adding an existing member is a
	// no-op.
	SAdd(ctx context.Context, key string, members ...string) error

	// SRem removes members from the set at key.
	SRem(ctx context.Context, key string, members ...string) error

	// SMembers returns every member of the set at key, in no particular
	// order. A missing key is an empty set.
	SMembers(ctx context.Context, key string) ([]string, error)
}

// ListStore covers ordered list primitives.
type ListStore interface {
	// RPush appends values to the tail of the list at key.
	RPush(ctx context.Context, key string, values ...[]byte) error

	// LPop atomically removes and returns the head of the list at key.
	// It returns ErrNil when the list is empty or missing.
	LPop(ctx context.Context, key string) ([]byte, error)

	// LLen returns the length of the list at key; 0 when missing.
	LLen(ctx context.Context, key string) (int64, error)

	// LRange returns the elements between start and stop inclusive.
	// Negative indexes count from the tail, as in Redis.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// ValueStore covers plain values and integer counters.
type ValueStore interface {
	// Get returns the value at key, or ErrNil.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key. A positive ttl expires the key; zero keeps
	// it forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only if key does not exist. It reports whether
	// the value was written.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// IncrBy atomically adds n to the integer at key (missing = 0) and
	// returns the new value.
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
}

// Store is the aggregate backing-store contract.
type Store interface {
	SetStore
	ListStore
	ValueStore

	// Del removes keys of any type.
	Del(ctx context.Context, keys ...string) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection. Later operations fail.
	Close() error
}

// ErrNotInteger is returned by IncrBy when the key holds a non-integer.
var ErrNotInteger = errors.New("store: value is not an integer")

// ErrWrongType is returned when a key holds a value of another kind than
// the operation expects, such as SMembers on a plain value.
var ErrWrongType = errors.New("store: wrong type")

// NormalizeRange converts Redis-style inclusive start/stop indexes (which
// may be negative) into bounds for a list of length n. ok is false when
// the range is empty.
func NormalizeRange(n, start, stop int64) (from, to int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
