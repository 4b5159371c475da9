package keyspace

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	k := New("resque")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"queue", k.Queue("mail"), "resque:queue:mail"},
		{"queues", k.Queues(), "resque:queues"},
		{"workers", k.Workers(), "resque:workers"},
		{"status", k.Status("job_1"), "resque:status:job_1"},
		{"failed", k.Failed(), "resque:failed"},
		{"stat", k.Stat("processed"), "resque:stat:processed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNew_TrailingColon(t *testing.T) {
	if a, b := New("app").Queue("q"), New("app:").Queue("q"); a != b {
		t.Errorf("trailing colon changed key: %q vs %q", a, b)
	}
}

func TestFragmentsPrefixFree(t *testing.T) {
	for i, a := range fragments {
		for j, b := range fragments {
			if i != j && strings.HasPrefix(a, b) {
				t.Errorf("fragment %q is a prefix of %q", b, a)
			}
		}
	}
}

func TestResolve_Distinct(t *testing.T) {
	k := New("resque")
	names := []string{"", "s", "queues", "workers", ":", "us:x", "x", "failed"}
	kinds := []Kind{KindQueue, KindQueueRegistry, KindWorkerRegistry, KindStatus, KindFailure, KindStat}

	seen := make(map[string]string)
	for _, kind := range kinds {
		for _, n := range names {
			key := k.Resolve(kind, n)
			pair := kind.String() + "|" + n
			if prev, ok := seen[key]; ok {
				t.Fatalf("key %q produced by both %s and %s", key, prev, pair)
			}
			seen[key] = pair
		}
	}
}

func TestPrefixIsolation(t *testing.T) {
	a, b := New("tenant1"), New("tenant2")
	if strings.HasPrefix(b.Queue("x"), a.Prefix()) {
		t.Errorf("key %q leaks into namespace %q", b.Queue("x"), a.Prefix())
	}
}

func TestResolve_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown kind")
		}
	}()
	New("resque").Resolve(Kind(99), "x")
}
