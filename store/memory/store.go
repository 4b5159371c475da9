// Package memory implements store.Store in process memory. It is safe for
// concurrent use and intended for unit testing and development.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/xraph/resque"
	"github.com/xraph/resque/store"
)

var _ store.Store = (*Store)(nil)

type value struct {
	data     []byte
	expireAt time.Time
}

func (v value) expired(now time.Time) bool {
	return !v.expireAt.IsZero() && !now.Before(v.expireAt)
}

// Store is a fully in-memory implementation of store.Store.
type Store struct {
	mu sync.Mutex

	sets   map[string]map[string]struct{}
	lists  map[string][][]byte
	values map[string]value
	closed bool

	now func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the time source used for TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Store) { m.now = now }
}

// New returns a new empty Store.
func New(opts ...Option) *Store {
	m := &Store{
		sets:   make(map[string]map[string]struct{}),
		lists:  make(map[string][][]byte),
		values: make(map[string]value),
		now:    time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping fails only after Close.
func (m *Store) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return resque.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Data is kept so Reconnect can reopen it.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Reconnect reopens a closed store.
func (m *Store) Reconnect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = false
	return nil
}

// checkOpen reports ErrStoreClosed after Close. The caller holds mu.
func (m *Store) checkOpen() error {
	if m.closed {
		return resque.ErrStoreClosed
	}
	return nil
}

// ──────────────────────────────────────────────────
// Sets
// ──────────────────────────────────────────────────

// SAdd adds members to the set at key.
func (m *Store) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{}, len(members))
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

// SRem removes members from the set at key.
func (m *Store) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}
	set := m.sets[key]
	for _, member := range members {
		delete(set, member)
	}
	if len(set) == 0 {
		delete(m.sets, key)
	}
	return nil
}

// SMembers returns every member of the set at key.
func (m *Store) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	if _, ok := m.lists[key]; ok {
		return nil, store.ErrWrongType
	}
	if _, ok := m.liveValue(key); ok {
		return nil, store.ErrWrongType
	}
	set := m.sets[key]
	out := make([]string, 0, len(set))
	for member := range set {
		out = append(out, member)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Lists
// ──────────────────────────────────────────────────

// RPush appends values to the tail of the list at key.
func (m *Store) RPush(_ context.Context, key string, values ...[]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}
	for _, v := range values {
		m.lists[key] = append(m.lists[key], append([]byte(nil), v...))
	}
	return nil
}

// LPop removes and returns the head of the list at key.
func (m *Store) LPop(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	l := m.lists[key]
	if len(l) == 0 {
		return nil, store.ErrNil
	}
	head := l[0]
	if len(l) == 1 {
		delete(m.lists, key)
	} else {
		m.lists[key] = l[1:]
	}
	return head, nil
}

// LLen returns the length of the list at key.
func (m *Store) LLen(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	return int64(len(m.lists[key])), nil
}

// LRange returns list elements between start and stop inclusive.
func (m *Store) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	l := m.lists[key]
	from, to, ok := store.NormalizeRange(int64(len(l)), start, stop)
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, to-from+1)
	for _, v := range l[from : to+1] {
		out = append(out, append([]byte(nil), v...))
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Values
// ──────────────────────────────────────────────────

// Get returns the value at key, or store.ErrNil.
func (m *Store) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	v, ok := m.liveValue(key)
	if !ok {
		return nil, store.ErrNil
	}
	return append([]byte(nil), v.data...), nil
}

// Set stores value at key with an optional ttl.
func (m *Store) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}
	m.values[key] = m.newValue(data, ttl)
	return nil
}

// SetNX stores value only if key is absent.
func (m *Store) SetNX(_ context.Context, key string, data []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return false, err
	}
	if _, ok := m.liveValue(key); ok {
		return false, nil
	}
	m.values[key] = m.newValue(data, ttl)
	return true, nil
}

// IncrBy adds n to the integer at key.
func (m *Store) IncrBy(_ context.Context, key string, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return 0, err
	}
	var cur int64
	v, ok := m.liveValue(key)
	if ok {
		parsed, err := strconv.ParseInt(string(v.data), 10, 64)
		if err != nil {
			return 0, store.ErrNotInteger
		}
		cur = parsed
	}
	cur += n
	v.data = []byte(strconv.FormatInt(cur, 10))
	m.values[key] = v
	return cur, nil
}

// Del removes keys of any type.
func (m *Store) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpen(); err != nil {
		return err
	}
	for _, k := range keys {
		delete(m.sets, k)
		delete(m.lists, k)
		delete(m.values, k)
	}
	return nil
}

// ── helpers ──

func (m *Store) newValue(data []byte, ttl time.Duration) value {
	v := value{data: append([]byte(nil), data...)}
	if ttl > 0 {
		v.expireAt = m.now().Add(ttl)
	}
	return v
}

// liveValue returns the value at key, dropping it if it has expired.
func (m *Store) liveValue(key string) (value, bool) {
	v, ok := m.values[key]
	if !ok {
		return value{}, false
	}
	if v.expired(m.now()) {
		delete(m.values, key)
		return value{}, false
	}
	return v, true
}
