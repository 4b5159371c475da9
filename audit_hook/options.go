package audithook

import (
	"log/slog"
	"slices"
)

// Option configures an Extension.
type Option func(*Extension)

// WithActions records only the listed actions. Actions outside
// AllActions are dropped.
//
// A deployment that audits destructive operations only:
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionQueueCleared,
//	        audithook.ActionFailureRecorded,
//	    ),
//	)
func WithActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(actions))
		for _, a := range actions {
			if knownAction(a) {
				e.enabled[a] = true
			}
		}
	}
}

// WithoutActions suppresses the listed actions. Enqueue and dequeue fire
// once per job, so high-throughput queues usually drop them:
//
//	audithook.WithoutActions(audithook.ActionJobEnqueued, audithook.ActionJobDequeued)
func WithoutActions(actions ...string) Option {
	return func(e *Extension) {
		if e.disabled == nil {
			e.disabled = make(map[string]bool, len(actions))
		}
		for _, a := range actions {
			e.disabled[a] = true
		}
	}
}

// WithMinSeverity drops events below severity. Status changes to failed
// are warnings and recorded failures are critical.
func WithMinSeverity(severity string) Option {
	return func(e *Extension) { e.minSeverity = severityRank(severity) }
}

// WithLogger sets the logger used when the Recorder fails.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) {
		if l != nil {
			e.logger = l
		}
	}
}

func knownAction(action string) bool { return slices.Contains(AllActions(), action) }

func severityRank(severity string) int {
	switch severity {
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	default:
		return 0
	}
}
