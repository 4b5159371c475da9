// Package keyspace maps logical resources (queues, registries, status and
// failure records, statistics) to backing-store keys under a configurable
// prefix.
//
// Every key has the shape "<prefix>:<fragment><name>". Fragments are
// pairwise prefix-free, so two different (kind, name) pairs never resolve
// to the same key, and the prefix is the only tenant isolation mechanism:
// handles with different prefixes observe disjoint key sets.
package keyspace

import (
	"fmt"
	"strings"
)

// Kind selects the resource family a key belongs to.
type Kind int

const (
	// KindQueue is the ordered list holding one queue's payloads.
	KindQueue Kind = iota
	// KindQueueRegistry is the set of every queue name ever pushed to.
	KindQueueRegistry
	// KindWorkerRegistry is the set of registered worker ids.
	KindWorkerRegistry
	// KindStatus is the status record of one job.
	KindStatus
	// KindFailure is the list of recorded failures.
	KindFailure
	// KindStat is one named counter.
	KindStat
)

// Must stay pairwise prefix-free.
var fragments = [...]string{
	KindQueue:          "queue:",
	KindQueueRegistry:  "queues",
	KindWorkerRegistry: "workers",
	KindStatus:         "status:",
	KindFailure:        "failed",
	KindStat:           "stat:",
}

// String returns the fragment for the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(fragments) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return fragments[k]
}

// Keyspace resolves keys for one prefix. The zero value is not usable;
// construct with New.
type Keyspace struct {
	prefix string
}

// New returns a Keyspace for prefix. A trailing ':' is optional. Prefix
// validation lives in resque.ValidatePrefix.
func New(prefix string) Keyspace {
	return Keyspace{prefix: strings.TrimSuffix(prefix, ":") + ":"}
}

// Prefix returns the normalized prefix, including its trailing ':'.
func (k Keyspace) Prefix() string { return k.prefix }

// Resolve returns the key for (kind, name). It panics on an unknown kind.
func (k Keyspace) Resolve(kind Kind, name string) string {
	if kind < 0 || int(kind) >= len(fragments) {
		panic(fmt.Sprintf("keyspace: unknown kind %d", int(kind)))
	}
	return k.prefix + fragments[kind] + name
}

// Queue returns the list key for a queue: <prefix>:queue:{name}
func (k Keyspace) Queue(name string) string { return k.Resolve(KindQueue, name) }

// Queues returns the queue registry set key: <prefix>:queues
func (k Keyspace) Queues() string { return k.Resolve(KindQueueRegistry, "") }

// Workers returns the worker registry set key: <prefix>:workers
func (k Keyspace) Workers() string { return k.Resolve(KindWorkerRegistry, "") }

// Status returns the status record key for a job: <prefix>:status:{id}
func (k Keyspace) Status(jobID string) string { return k.Resolve(KindStatus, jobID) }

// Failed returns the failure list key: <prefix>:failed
func (k Keyspace) Failed() string { return k.Resolve(KindFailure, "") }

// Stat returns the counter key for a statistic: <prefix>:stat:{name}
func (k Keyspace) Stat(name string) string { return k.Resolve(KindStat, name) }
