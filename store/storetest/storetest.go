// Package storetest holds a conformance suite run by every store.Store
// backend.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/xraph/resque/store"
)

// Harness describes a backend under test.
type Harness struct {
	// New returns an empty store. The harness owns cleanup.
	New func(t *testing.T) store.Store

	// Advance moves the backend's clock forward. Nil skips TTL checks.
	Advance func(d time.Duration)
}

// Run executes the suite against h.
func Run(t *testing.T, h Harness) {
	t.Helper()
	ctx := context.Background()

	t.Run("Sets", func(t *testing.T) {
		s := h.New(t)
		if err := s.SAdd(ctx, "set", "a", "b"); err != nil {
			t.Fatalf("SAdd: %v", err)
		}
		if err := s.SAdd(ctx, "set", "a"); err != nil {
			t.Fatalf("SAdd duplicate: %v", err)
		}
		got := members(t, s, "set")
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Fatalf("SMembers = %v, want [a b]", got)
		}
		if err := s.SRem(ctx, "set", "a"); err != nil {
			t.Fatalf("SRem: %v", err)
		}
		if got := members(t, s, "set"); len(got) != 1 || got[0] != "b" {
			t.Fatalf("SMembers after SRem = %v, want [b]", got)
		}
		if got := members(t, s, "missing"); len(got) != 0 {
			t.Fatalf("SMembers(missing) = %v, want empty", got)
		}
	})

	t.Run("ListFIFO", func(t *testing.T) {
		s := h.New(t)
		for _, v := range []string{"1", "2", "3"} {
			if err := s.RPush(ctx, "list", []byte(v)); err != nil {
				t.Fatalf("RPush: %v", err)
			}
		}
		if n, err := s.LLen(ctx, "list"); err != nil || n != 3 {
			t.Fatalf("LLen = %d, %v; want 3", n, err)
		}
		for _, want := range []string{"1", "2", "3"} {
			got, err := s.LPop(ctx, "list")
			if err != nil {
				t.Fatalf("LPop: %v", err)
			}
			if string(got) != want {
				t.Fatalf("LPop = %q, want %q", got, want)
			}
		}
		if _, err := s.LPop(ctx, "list"); !errors.Is(err, store.ErrNil) {
			t.Fatalf("LPop(empty) error = %v, want ErrNil", err)
		}
		if n, err := s.LLen(ctx, "list"); err != nil || n != 0 {
			t.Fatalf("LLen(empty) = %d, %v; want 0", n, err)
		}
	})

	t.Run("ListRange", func(t *testing.T) {
		s := h.New(t)
		if err := s.RPush(ctx, "list", []byte("a"), []byte("b"), []byte("c"), []byte("d")); err != nil {
			t.Fatalf("RPush: %v", err)
		}
		tests := []struct {
			start, stop int64
			want        []string
		}{
			{0, -1, []string{"a", "b", "c", "d"}},
			{1, 2, []string{"b", "c"}},
			{-2, -1, []string{"c", "d"}},
			{2, 100, []string{"c", "d"}},
			{5, 10, nil},
		}
		for _, tt := range tests {
			got, err := s.LRange(ctx, "list", tt.start, tt.stop)
			if err != nil {
				t.Fatalf("LRange(%d,%d): %v", tt.start, tt.stop, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("LRange(%d,%d) = %d items, want %d", tt.start, tt.stop, len(got), len(tt.want))
			}
			for i := range got {
				if string(got[i]) != tt.want[i] {
					t.Fatalf("LRange(%d,%d)[%d] = %q, want %q", tt.start, tt.stop, i, got[i], tt.want[i])
				}
			}
		}
		// Range must not consume.
		if n, _ := s.LLen(ctx, "list"); n != 4 {
			t.Fatalf("LLen after LRange = %d, want 4", n)
		}
	})

	t.Run("ConcurrentPopDeliversOnce", func(t *testing.T) {
		s := h.New(t)
		const n = 200
		for i := range n {
			if err := s.RPush(ctx, "list", []byte{byte(i), byte(i >> 8)}); err != nil {
				t.Fatalf("RPush: %v", err)
			}
		}
		var (
			mu   sync.Mutex
			seen = make(map[string]int)
			wg   sync.WaitGroup
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					v, err := s.LPop(ctx, "list")
					if errors.Is(err, store.ErrNil) {
						return
					}
					if err != nil {
						t.Errorf("LPop: %v", err)
						return
					}
					mu.Lock()
					seen[string(v)]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if len(seen) != n {
			t.Fatalf("popped %d distinct payloads, want %d", len(seen), n)
		}
		for k, c := range seen {
			if c != 1 {
				t.Fatalf("payload %x delivered %d times", k, c)
			}
		}
	})

	t.Run("Values", func(t *testing.T) {
		s := h.New(t)
		if _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrNil) {
			t.Fatalf("Get(missing) error = %v, want ErrNil", err)
		}
		ok, err := s.SetNX(ctx, "k", []byte("v1"), 0)
		if err != nil || !ok {
			t.Fatalf("SetNX first = %v, %v; want true", ok, err)
		}
		ok, err = s.SetNX(ctx, "k", []byte("v2"), 0)
		if err != nil || ok {
			t.Fatalf("SetNX second = %v, %v; want false", ok, err)
		}
		got, err := s.Get(ctx, "k")
		if err != nil || !bytes.Equal(got, []byte("v1")) {
			t.Fatalf("Get = %q, %v; want v1", got, err)
		}
		if err := s.Set(ctx, "k", []byte("v3"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if got, _ := s.Get(ctx, "k"); string(got) != "v3" {
			t.Fatalf("Get after Set = %q, want v3", got)
		}
	})

	t.Run("Counters", func(t *testing.T) {
		s := h.New(t)
		if v, err := s.IncrBy(ctx, "c", 5); err != nil || v != 5 {
			t.Fatalf("IncrBy = %d, %v; want 5", v, err)
		}
		if v, err := s.IncrBy(ctx, "c", -2); err != nil || v != 3 {
			t.Fatalf("IncrBy = %d, %v; want 3", v, err)
		}
		if got, _ := s.Get(ctx, "c"); string(got) != "3" {
			t.Fatalf("Get(counter) = %q, want 3", got)
		}
	})

	t.Run("Del", func(t *testing.T) {
		s := h.New(t)
		_ = s.SAdd(ctx, "set", "a")
		_ = s.RPush(ctx, "list", []byte("a"))
		_ = s.Set(ctx, "val", []byte("a"), 0)
		if err := s.Del(ctx, "set", "list", "val", "missing"); err != nil {
			t.Fatalf("Del: %v", err)
		}
		if got := members(t, s, "set"); len(got) != 0 {
			t.Fatalf("set survived Del: %v", got)
		}
		if n, _ := s.LLen(ctx, "list"); n != 0 {
			t.Fatalf("list survived Del: %d", n)
		}
		if _, err := s.Get(ctx, "val"); !errors.Is(err, store.ErrNil) {
			t.Fatalf("value survived Del: %v", err)
		}
	})

	if h.Advance != nil {
		t.Run("TTL", func(t *testing.T) {
			s := h.New(t)
			if err := s.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "forever", []byte("y"), 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			h.Advance(2 * time.Minute)
			if _, err := s.Get(ctx, "short"); !errors.Is(err, store.ErrNil) {
				t.Fatalf("expired key still readable: %v", err)
			}
			if got, err := s.Get(ctx, "forever"); err != nil || string(got) != "y" {
				t.Fatalf("Get(forever) = %q, %v", got, err)
			}
			ok, err := s.SetNX(ctx, "short", []byte("z"), 0)
			if err != nil || !ok {
				t.Fatalf("SetNX on expired key = %v, %v; want true", ok, err)
			}
		})
	}

	t.Run("Closed", func(t *testing.T) {
		s := h.New(t)
		if err := s.Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := s.RPush(ctx, "list", []byte("x")); err == nil {
			t.Fatal("RPush after Close succeeded")
		}
		if _, err := s.LPop(ctx, "list"); err == nil || errors.Is(err, store.ErrNil) {
			t.Fatalf("LPop after Close error = %v, want a store failure", err)
		}
	})
}

func members(t *testing.T, s store.Store, key string) []string {
	t.Helper()
	got, err := s.SMembers(context.Background(), key)
	if err != nil {
		t.Fatalf("SMembers: %v", err)
	}
	sort.Strings(got)
	return got
}
