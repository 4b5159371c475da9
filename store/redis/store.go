package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/resque"
	"github.com/xraph/resque/store"
)

var _ store.Store = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store implements store.Store backed by Redis.
type Store struct {
	mu     sync.RWMutex
	client goredis.UniversalClient
	closed bool

	// owned stores rebuild their client from opts on Reconnect.
	owned bool
	opts  *goredis.Options

	logger *slog.Logger
}

// New creates a store over a caller-owned client. Close marks the store
// closed but leaves the client open.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewFromOptions creates a store that owns a client built from o.
func NewFromOptions(o *goredis.Options, opts ...Option) *Store {
	s := New(goredis.NewClient(o), opts...)
	s.owned = true
	s.opts = o
	return s
}

// Open parses a redis:// URL and returns a store that owns its client.
func Open(url string, opts ...Option) (*Store, error) {
	o, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("resque/redis: parse url: %w", err)
	}
	return NewFromOptions(o, opts...), nil
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.UniversalClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("resque/redis: ping: %w", err)
	}
	return nil
}

// Close disconnects. An owned client is closed; a caller-owned one is not.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.owned {
		if err := s.client.Close(); err != nil {
			return fmt.Errorf("resque/redis: close: %w", err)
		}
	}
	return nil
}

// Reconnect drops the current connection and establishes a new one. A
// caller-owned client is reused and pinged.
func (s *Store) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.owned {
		if !s.closed {
			if err := s.client.Close(); err != nil {
				s.logger.Warn("resque/redis: close before reconnect",
					slog.String("error", err.Error()),
				)
			}
		}
		s.client = goredis.NewClient(s.opts)
	}
	s.closed = false
	s.mu.Unlock()

	return s.Ping(ctx)
}

func (s *Store) conn() (goredis.UniversalClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, resque.ErrStoreClosed
	}
	return s.client, nil
}

// ──────────────────────────────────────────────────
// Sets
// ──────────────────────────────────────────────────

// SAdd adds members to the set at key.
func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.SAdd(ctx, key, toAny(members)...).Err(); err != nil {
		return fmt.Errorf("resque/redis: sadd %s: %w", key, err)
	}
	return nil
}

// SRem removes members from the set at key.
func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.SRem(ctx, key, toAny(members)...).Err(); err != nil {
		return fmt.Errorf("resque/redis: srem %s: %w", key, err)
	}
	return nil
}

// SMembers returns every member of the set at key.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	out, err := c.SMembers(ctx, key).Result()
	if err != nil {
		if strings.HasPrefix(err.Error(), "WRONGTYPE") {
			return nil, fmt.Errorf("resque/redis: smembers %s: %w", key, store.ErrWrongType)
		}
		return nil, fmt.Errorf("resque/redis: smembers %s: %w", key, err)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Lists
// ──────────────────────────────────────────────────

// RPush appends values to the tail of the list at key.
func (s *Store) RPush(ctx context.Context, key string, values ...[]byte) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if err := c.RPush(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("resque/redis: rpush %s: %w", key, err)
	}
	return nil
}

// LPop removes and returns the head of the list at key.
func (s *Store) LPop(ctx context.Context, key string) ([]byte, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	b, err := c.LPop(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNil
	}
	if err != nil {
		return nil, fmt.Errorf("resque/redis: lpop %s: %w", key, err)
	}
	return b, nil
}

// LLen returns the length of the list at key.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	c, err := s.conn()
	if err != nil {
		return 0, err
	}
	n, err := c.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("resque/redis: llen %s: %w", key, err)
	}
	return n, nil
}

// LRange returns list elements between start and stop inclusive.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	items, err := c.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("resque/redis: lrange %s: %w", key, err)
	}
	out := make([][]byte, len(items))
	for i, it := range items {
		out[i] = []byte(it)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Values
// ──────────────────────────────────────────────────

// Get returns the value at key, or store.ErrNil.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	b, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNil
	}
	if err != nil {
		return nil, fmt.Errorf("resque/redis: get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value at key with an optional ttl.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("resque/redis: set %s: %w", key, err)
	}
	return nil
}

// SetNX stores value only if key is absent.
func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c, err := s.conn()
	if err != nil {
		return false, err
	}
	ok, err := c.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("resque/redis: setnx %s: %w", key, err)
	}
	return ok, nil
}

// IncrBy adds n to the integer at key.
func (s *Store) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	c, err := s.conn()
	if err != nil {
		return 0, err
	}
	v, err := c.IncrBy(ctx, key, n).Result()
	if err != nil {
		if strings.Contains(err.Error(), "not an integer") {
			return 0, store.ErrNotInteger
		}
		return 0, fmt.Errorf("resque/redis: incrby %s: %w", key, err)
	}
	return v, nil
}

// Del removes keys of any type.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	c, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("resque/redis: del: %w", err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
