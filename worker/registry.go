package worker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/xraph/resque"
	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store"
)

// Registry reads the worker registry set.
type Registry struct {
	store store.SetStore
	keys  keyspace.Keyspace
}

// NewRegistry creates a registry reader.
func NewRegistry(s store.SetStore, keys keyspace.Keyspace) *Registry {
	return &Registry{store: s, keys: keys}
}

// List returns every registered worker id, sorted. A workers key that
// does not hold a set reads as an empty registry.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	ids, err := r.store.SMembers(ctx, r.keys.Workers())
	if errors.Is(err, store.ErrWrongType) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resque/worker: list: %w", err)
	}
	if ids == nil {
		return []string{}, nil
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists reports whether id is registered.
func (r *Registry) Exists(ctx context.Context, id string) (bool, error) {
	ids, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// ID is a parsed worker id.
type ID struct {
	Host   string
	PID    int
	Queues []string
}

// ParseID parses "host:pid:queues". The queue list is comma separated
// and may be empty.
func ParseID(s string) (ID, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return ID{}, fmt.Errorf("%w: worker id %q", resque.ErrInvalidArgument, s)
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid <= 0 {
		return ID{}, fmt.Errorf("%w: worker id %q: bad pid", resque.ErrInvalidArgument, s)
	}
	id := ID{Host: parts[0], PID: pid, Queues: []string{}}
	if parts[2] != "" {
		id.Queues = strings.Split(parts[2], ",")
	}
	return id, nil
}

// String formats the id as "host:pid:queues".
func (id ID) String() string {
	return id.Host + ":" + strconv.Itoa(id.PID) + ":" + strings.Join(id.Queues, ",")
}
