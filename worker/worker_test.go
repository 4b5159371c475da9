package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/xraph/resque"
	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store/memory"
)

func fixedOutput(stdout string, code int) Enumerator {
	return EnumeratorFunc(func(context.Context, string) (Output, error) {
		return Output{Stdout: []byte(stdout), ExitCode: code}, nil
	})
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

// ──────────────────────────────────────────────────
// Discovery
// ──────────────────────────────────────────────────

func TestLivePIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stdout   string
		code     int
		want     []int
		wantWarn bool
	}{
		{"no matches", "", 1, []int{}, false},
		{"mixed lines", "1234 resque-worker\nnot-a-pid junk\n", 0, []int{1234}, false},
		{"several", "  10 resque\n\n20 resque-2\n", 0, []int{10, 20}, false},
		{"zero and negative skipped", "0 init\n-5 x\n7 ok\n", 0, []int{7}, false},
		{"bad exit", "1234 resque\n", 3, []int{}, true},
		{"nul line skipped", "12\x00 resque\n34 resque\n", 0, []int{34}, false},
		{"latin-1 command line", "1234 resque caf\xe9\n5678 resque\n", 0, []int{1234, 5678}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, logs := captureLogger()
			d := NewDiscoverer(fixedOutput(tt.stdout, tt.code), nil, WithLogger(logger))

			got := d.LivePIDs(context.Background())
			if got == nil {
				t.Fatal("LivePIDs returned nil, want empty slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("LivePIDs = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("LivePIDs = %v, want %v", got, tt.want)
				}
			}
			warned := strings.Contains(logs.String(), "level=WARN")
			if warned != tt.wantWarn {
				t.Errorf("warned = %v, want %v (logs: %s)", warned, tt.wantWarn, logs.String())
			}
		})
	}
}

func TestLivePIDs_EnumerationError(t *testing.T) {
	t.Parallel()
	logger, logs := captureLogger()
	enum := EnumeratorFunc(func(context.Context, string) (Output, error) {
		return Output{}, exec.ErrNotFound
	})

	got := NewDiscoverer(enum, nil, WithLogger(logger)).LivePIDs(context.Background())
	if len(got) != 0 {
		t.Fatalf("LivePIDs = %v, want empty", got)
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Error("expected a warning")
	}
}

func TestLivePIDs_PassesPattern(t *testing.T) {
	t.Parallel()
	var seen string
	enum := EnumeratorFunc(func(_ context.Context, pattern string) (Output, error) {
		seen = pattern
		return Output{ExitCode: 1}, nil
	})

	NewDiscoverer(enum, nil, WithPattern("resque-[0-9]")).LivePIDs(context.Background())
	if seen != "resque-[0-9]" {
		t.Fatalf("pattern = %q", seen)
	}
}

func TestShellEnumerator(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()

	// echo prints the quoted pattern back, proving it reaches the command
	// as a single argument.
	out, err := ShellEnumerator{Command: "echo 42"}.Enumerate(ctx, "it's; rm -rf /")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if out.ExitCode != 0 || strings.TrimSpace(string(out.Stdout)) != "42 it's; rm -rf /" {
		t.Fatalf("Output = %q, exit %d", out.Stdout, out.ExitCode)
	}

	out, err = ShellEnumerator{Command: "exit 1 #"}.Enumerate(ctx, "x")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if out.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1", out.ExitCode)
	}
}

// ──────────────────────────────────────────────────
// Registry
// ──────────────────────────────────────────────────

func TestRegistry(t *testing.T) {
	t.Parallel()
	st := memory.New()
	ks := keyspace.New("resque")
	r := NewRegistry(st, ks)
	ctx := context.Background()

	if ids, err := r.List(ctx); err != nil || len(ids) != 0 || ids == nil {
		t.Fatalf("List on empty registry = %v, %v", ids, err)
	}

	_ = st.SAdd(ctx, ks.Workers(), "b:2:mail", "a:1:default")

	ids, _ := r.List(ctx)
	if strings.Join(ids, " ") != "a:1:default b:2:mail" {
		t.Fatalf("List = %v", ids)
	}
	for _, tt := range []struct {
		id   string
		want bool
	}{
		{"a:1:default", true},
		{"b:2:mail", true},
		{"c:3:mail", false},
		{"", false},
	} {
		got, err := r.Exists(ctx, tt.id)
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if got != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRegistry_StoreFailure(t *testing.T) {
	t.Parallel()
	st := memory.New()
	_ = st.Close()

	if _, err := NewRegistry(st, keyspace.New("resque")).Exists(context.Background(), "x"); !errors.Is(err, resque.ErrStoreClosed) {
		t.Fatalf("error = %v, want ErrStoreClosed", err)
	}
}

func TestRegistry_WrongTypeIsEmpty(t *testing.T) {
	t.Parallel()
	st := memory.New()
	ks := keyspace.New("resque")
	ctx := context.Background()
	_ = st.Set(ctx, ks.Workers(), []byte("garbage"), 0)

	r := NewRegistry(st, ks)
	ids, err := r.List(ctx)
	if err != nil || ids == nil || len(ids) != 0 {
		t.Fatalf("List = %v, %v; want empty, nil", ids, err)
	}
	if ok, err := r.Exists(ctx, "a:1:default"); err != nil || ok {
		t.Fatalf("Exists = %v, %v; want false, nil", ok, err)
	}
}

func TestParsePIDs_LineTooLong(t *testing.T) {
	t.Parallel()
	long := "1 " + strings.Repeat("x", 2*1024*1024) + "\n"
	if _, err := ParsePIDs([]byte(long)); !errors.Is(err, ErrUnparsableOutput) {
		t.Fatalf("error = %v, want ErrUnparsableOutput", err)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("web-1:4242:mail,default")
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if id.Host != "web-1" || id.PID != 4242 || strings.Join(id.Queues, ",") != "mail,default" {
		t.Fatalf("ParseID = %+v", id)
	}
	if id.String() != "web-1:4242:mail,default" {
		t.Errorf("String = %q", id.String())
	}

	for _, bad := range []string{"", "host", "host:abc:q", ":1:q", "host:0:q"} {
		if _, err := ParseID(bad); !errors.Is(err, resque.ErrInvalidArgument) {
			t.Errorf("ParseID(%q) error = %v", bad, err)
		}
	}
}

func TestReconcile(t *testing.T) {
	t.Parallel()
	st := memory.New()
	ks := keyspace.New("resque")
	ctx := context.Background()
	_ = st.SAdd(ctx, ks.Workers(),
		"here:100:mail",  // alive
		"here:200:mail",  // dead
		"there:300:mail", // other host, ignored
		"garbage",
	)

	d := NewDiscoverer(
		fixedOutput("100 resque-worker\n", 0),
		NewRegistry(st, ks),
		WithHostname(func() (string, error) { return "here", nil }),
	)
	stale, err := d.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(stale) != 1 || stale[0] != "here:200:mail" {
		t.Fatalf("stale = %v, want [here:200:mail]", stale)
	}

	failing := NewDiscoverer(fixedOutput("", 2), NewRegistry(st, ks),
		WithHostname(func() (string, error) { return "here", nil }))
	stale, err = failing.Reconcile(ctx)
	if err != nil || len(stale) != 0 {
		t.Fatalf("Reconcile with failed discovery = %v, %v; want empty", stale, err)
	}
}
