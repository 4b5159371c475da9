package worker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// ErrUnparsableOutput is returned by ParsePIDs when the output cannot be
// split into lines.
var ErrUnparsableOutput = errors.New("worker: unparsable enumeration output")

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithPattern sets the match pattern passed to the enumerator.
func WithPattern(p string) DiscovererOption {
	return func(d *Discoverer) { d.pattern = p }
}

// WithLogger sets the logger used for discovery warnings.
func WithLogger(l *slog.Logger) DiscovererOption {
	return func(d *Discoverer) { d.logger = l }
}

// WithHostname overrides how the local hostname is resolved.
func WithHostname(fn func() (string, error)) DiscovererOption {
	return func(d *Discoverer) { d.hostname = fn }
}

// Discoverer finds live worker processes.
type Discoverer struct {
	enum     Enumerator
	registry *Registry
	pattern  string
	logger   *slog.Logger
	hostname func() (string, error)
}

// NewDiscoverer creates a Discoverer. registry may be nil when Reconcile
// is not needed.
func NewDiscoverer(enum Enumerator, registry *Registry, opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		enum:     enum,
		registry: registry,
		pattern:  "resque",
		logger:   slog.New(slog.DiscardHandler),
		hostname: os.Hostname,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// LivePIDs returns the pids of processes matching the pattern. Discovery
// failures are logged and yield an empty slice.
func (d *Discoverer) LivePIDs(ctx context.Context) []int {
	pids, _ := d.discover(ctx)
	return pids
}

// discover reports ok=false when discovery failed.
func (d *Discoverer) discover(ctx context.Context) ([]int, bool) {
	out, err := d.enum.Enumerate(ctx, d.pattern)
	if err != nil {
		d.logger.Warn("worker discovery failed",
			slog.String("pattern", d.pattern),
			slog.String("error", err.Error()),
		)
		return []int{}, false
	}
	switch out.ExitCode {
	case 0, 1:
	default:
		d.logger.Warn("worker discovery failed",
			slog.String("pattern", d.pattern),
			slog.Int("exit_code", out.ExitCode),
		)
		return []int{}, false
	}
	pids, err := ParsePIDs(out.Stdout)
	if err != nil {
		d.logger.Warn("worker discovery failed",
			slog.String("pattern", d.pattern),
			slog.String("error", err.Error()),
		)
		return []int{}, false
	}
	return pids, true
}

// ParsePIDs extracts the leading pid of every line. Lines whose first
// token is not a positive integer, and lines carrying NUL bytes, are
// skipped. The rest of a line is not interpreted, so command lines in any
// encoding are accepted.
func ParsePIDs(stdout []byte) ([]int, error) {
	pids := []int{}
	sc := bufio.NewScanner(bytes.NewReader(stdout))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if bytes.IndexByte(line, 0) >= 0 {
			continue
		}
		fields := bytes.Fields(line)
		if len(fields) == 0 {
			continue
		}
		pid, err := strconv.Atoi(string(fields[0]))
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableOutput, err)
	}
	return pids, nil
}

// Reconcile returns the registered workers on this host whose pid is not
// among the live processes. It is advisory: nothing is unregistered.
// When discovery fails no worker is reported stale.
func (d *Discoverer) Reconcile(ctx context.Context) ([]string, error) {
	if d.registry == nil {
		return nil, errors.New("worker: reconcile needs a registry")
	}
	host, err := d.hostname()
	if err != nil {
		return nil, fmt.Errorf("resque/worker: hostname: %w", err)
	}
	ids, err := d.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	pids, ok := d.discover(ctx)
	if !ok {
		return []string{}, nil
	}
	live := make(map[int]struct{}, len(pids))
	for _, p := range pids {
		live[p] = struct{}{}
	}

	stale := []string{}
	for _, raw := range ids {
		wid, err := ParseID(raw)
		if err != nil {
			d.logger.Debug("skipping unparsable worker id", slog.String("worker", raw))
			continue
		}
		if wid.Host != host {
			continue
		}
		if _, ok := live[wid.PID]; !ok {
			stale = append(stale, raw)
		}
	}
	return stale, nil
}
