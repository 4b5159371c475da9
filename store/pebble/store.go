package pebble

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/xraph/resque"
	"github.com/xraph/resque/store"
)

var _ store.Store = (*Store)(nil)

const (
	tagValue    byte = 'v'
	tagSet      byte = 's'
	tagListMeta byte = 'm'
	tagListItem byte = 'l'
)

// Options configures the Pebble store.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Sync forces a WAL fsync on every write.
	Sync bool
	// PebbleOptions allows advanced tuning of Pebble. If nil, defaults are used.
	PebbleOptions *pebble.Options
	// Now overrides the time source used for TTL expiry.
	Now func() time.Time
}

// Store implements store.Store on Pebble.
type Store struct {
	mu   sync.Mutex
	db   *pebble.DB
	opts Options
	wo   *pebble.WriteOptions
}

// Open creates or opens a Pebble-backed store.
func Open(opts Options) (*Store, error) {
	if opts.DataDir == "" {
		return nil, fmt.Errorf("%w: pebble: DataDir is required", resque.ErrInvalidArgument)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{opts: opts, wo: pebble.NoSync}
	if opts.Sync {
		s.wo = pebble.Sync
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() error {
	po := s.opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	db, err := pebble.Open(s.opts.DataDir, po)
	if err != nil {
		return fmt.Errorf("resque/pebble: open %s: %w", s.opts.DataDir, err)
	}
	s.db = db
	return nil
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping fails once the database is closed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkOpen()
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("resque/pebble: close: %w", err)
	}
	return nil
}

// Reconnect closes and reopens the database directory.
func (s *Store) Reconnect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("resque/pebble: close before reopen: %w", err)
		}
		s.db = nil
	}
	return s.open()
}

func (s *Store) checkOpen() error {
	if s.db == nil {
		return resque.ErrStoreClosed
	}
	return nil
}

// ──────────────────────────────────────────────────
// Sets
// ──────────────────────────────────────────────────

// SAdd adds members to the set at key.
func (s *Store) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	b := s.db.NewBatch()
	defer b.Close()
	base := encodeKey(tagSet, key)
	for _, m := range members {
		if err := b.Set(append(clone(base), m...), nil, nil); err != nil {
			return fmt.Errorf("resque/pebble: sadd %s: %w", key, err)
		}
	}
	return s.commit(b, "sadd", key)
}

// SRem removes members from the set at key.
func (s *Store) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	b := s.db.NewBatch()
	defer b.Close()
	base := encodeKey(tagSet, key)
	for _, m := range members {
		if err := b.Delete(append(clone(base), m...), nil); err != nil {
			return fmt.Errorf("resque/pebble: srem %s: %w", key, err)
		}
	}
	return s.commit(b, "srem", key)
}

// SMembers returns every member of the set at key.
func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	base := encodeKey(tagSet, key)
	out := []string{}
	err := s.scan(base, func(k, _ []byte) {
		out = append(out, string(k[len(base):]))
	})
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: smembers %s: %w", key, err)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Lists
// ──────────────────────────────────────────────────

// RPush appends values to the tail of the list at key.
func (s *Store) RPush(_ context.Context, key string, values ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	head, tail, err := s.listMeta(key)
	if err != nil {
		return fmt.Errorf("resque/pebble: rpush %s: %w", key, err)
	}
	b := s.db.NewBatch()
	defer b.Close()
	for _, v := range values {
		if err := b.Set(itemKey(key, tail), v, nil); err != nil {
			return fmt.Errorf("resque/pebble: rpush %s: %w", key, err)
		}
		tail++
	}
	if err := b.Set(encodeKey(tagListMeta, key), encodeMeta(head, tail), nil); err != nil {
		return fmt.Errorf("resque/pebble: rpush %s: %w", key, err)
	}
	return s.commit(b, "rpush", key)
}

// LPop removes and returns the head of the list at key.
func (s *Store) LPop(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	head, tail, err := s.listMeta(key)
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: lpop %s: %w", key, err)
	}
	if head == tail {
		return nil, store.ErrNil
	}
	ik := itemKey(key, head)
	v, err := s.get(ik)
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: lpop %s: %w", key, err)
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(ik, nil); err != nil {
		return nil, fmt.Errorf("resque/pebble: lpop %s: %w", key, err)
	}
	head++
	mk := encodeKey(tagListMeta, key)
	if head == tail {
		err = b.Delete(mk, nil)
	} else {
		err = b.Set(mk, encodeMeta(head, tail), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: lpop %s: %w", key, err)
	}
	if err := s.commit(b, "lpop", key); err != nil {
		return nil, err
	}
	return v, nil
}

// LLen returns the length of the list at key.
func (s *Store) LLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	head, tail, err := s.listMeta(key)
	if err != nil {
		return 0, fmt.Errorf("resque/pebble: llen %s: %w", key, err)
	}
	return int64(tail - head), nil
}

// LRange returns list elements between start and stop inclusive.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	head, tail, err := s.listMeta(key)
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: lrange %s: %w", key, err)
	}
	from, to, ok := store.NormalizeRange(int64(tail-head), start, stop)
	if !ok {
		return [][]byte{}, nil
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: itemKey(key, head+uint64(from)),
		UpperBound: itemKey(key, head+uint64(to)+1),
	})
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: lrange %s: %w", key, err)
	}
	defer iter.Close()
	out := make([][]byte, 0, to-from+1)
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, clone(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("resque/pebble: lrange %s: %w", key, err)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Values
// ──────────────────────────────────────────────────

// Get returns the value at key, or store.ErrNil.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	v, ok, err := s.liveValue(key)
	if err != nil {
		return nil, fmt.Errorf("resque/pebble: get %s: %w", key, err)
	}
	if !ok {
		return nil, store.ErrNil
	}
	return v, nil
}

// Set stores value at key with an optional ttl.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.db.Set(encodeKey(tagValue, key), s.encodeValue(value, ttl), s.wo); err != nil {
		return fmt.Errorf("resque/pebble: set %s: %w", key, err)
	}
	return nil
}

// SetNX stores value only if key is absent.
func (s *Store) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	_, exists, err := s.liveValue(key)
	if err != nil {
		return false, fmt.Errorf("resque/pebble: setnx %s: %w", key, err)
	}
	if exists {
		return false, nil
	}
	if err := s.db.Set(encodeKey(tagValue, key), s.encodeValue(value, ttl), s.wo); err != nil {
		return false, fmt.Errorf("resque/pebble: setnx %s: %w", key, err)
	}
	return true, nil
}

// IncrBy adds n to the integer at key. An existing expiry is kept.
func (s *Store) IncrBy(_ context.Context, key string, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	vk := encodeKey(tagValue, key)
	raw, err := s.get(vk)
	var (
		cur    int64
		expiry uint64
	)
	switch {
	case errors.Is(err, pebble.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("resque/pebble: incrby %s: %w", key, err)
	default:
		exp, data := decodeValue(raw)
		if exp == 0 || s.opts.Now().UnixNano() < int64(exp) {
			expiry = exp
			cur, err = strconv.ParseInt(string(data), 10, 64)
			if err != nil {
				return 0, store.ErrNotInteger
			}
		}
	}
	cur += n
	buf := make([]byte, 8, 8+20)
	binary.BigEndian.PutUint64(buf, expiry)
	buf = strconv.AppendInt(buf, cur, 10)
	if err := s.db.Set(vk, buf, s.wo); err != nil {
		return 0, fmt.Errorf("resque/pebble: incrby %s: %w", key, err)
	}
	return cur, nil
}

// Del removes keys of any type.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	b := s.db.NewBatch()
	defer b.Close()
	for _, key := range keys {
		if err := b.Delete(encodeKey(tagValue, key), nil); err != nil {
			return fmt.Errorf("resque/pebble: del %s: %w", key, err)
		}
		if err := b.Delete(encodeKey(tagListMeta, key), nil); err != nil {
			return fmt.Errorf("resque/pebble: del %s: %w", key, err)
		}
		for _, tag := range []byte{tagSet, tagListItem} {
			lo := encodeKey(tag, key)
			if err := b.DeleteRange(lo, upperBound(lo), nil); err != nil {
				return fmt.Errorf("resque/pebble: del %s: %w", key, err)
			}
		}
	}
	return s.commit(b, "del", "")
}

// ── helpers ──

func (s *Store) commit(b *pebble.Batch, op, key string) error {
	if err := b.Commit(s.wo); err != nil {
		return fmt.Errorf("resque/pebble: %s %s: %w", op, key, err)
	}
	return nil
}

func (s *Store) get(k []byte) ([]byte, error) {
	v, closer, err := s.db.Get(k)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return clone(v), nil
}

// scan calls fn for every key under prefix.
func (s *Store) scan(prefix []byte, fn func(k, v []byte)) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		fn(iter.Key(), iter.Value())
	}
	return iter.Error()
}

func (s *Store) listMeta(key string) (head, tail uint64, err error) {
	raw, err := s.get(encodeKey(tagListMeta, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	if len(raw) != 16 {
		return 0, 0, fmt.Errorf("corrupt list meta for %q", key)
	}
	return binary.BigEndian.Uint64(raw[:8]), binary.BigEndian.Uint64(raw[8:]), nil
}

// liveValue returns the value at key, ignoring it once expired. Expired
// values are left for the next write to overwrite.
func (s *Store) liveValue(key string) ([]byte, bool, error) {
	raw, err := s.get(encodeKey(tagValue, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	exp, data := decodeValue(raw)
	if exp != 0 && s.opts.Now().UnixNano() >= int64(exp) {
		return nil, false, nil
	}
	return data, true, nil
}

func (s *Store) encodeValue(data []byte, ttl time.Duration) []byte {
	var exp uint64
	if ttl > 0 {
		exp = uint64(s.opts.Now().Add(ttl).UnixNano())
	}
	buf := make([]byte, 8, 8+len(data))
	binary.BigEndian.PutUint64(buf, exp)
	return append(buf, data...)
}

func decodeValue(raw []byte) (uint64, []byte) {
	if len(raw) < 8 {
		return 0, raw
	}
	return binary.BigEndian.Uint64(raw[:8]), raw[8:]
}

func encodeKey(tag byte, key string) []byte {
	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(key))
	out = append(out, tag)
	out = binary.AppendUvarint(out, uint64(len(key)))
	return append(out, key...)
}

func itemKey(key string, idx uint64) []byte {
	return binary.BigEndian.AppendUint64(encodeKey(tagListItem, key), idx)
}

func encodeMeta(head, tail uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], head)
	binary.BigEndian.PutUint64(buf[8:], tail)
	return buf
}

// upperBound returns the smallest key greater than every key with the
// given prefix.
func upperBound(prefix []byte) []byte {
	end := clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }
