package middleware

import (
	"context"

	"github.com/xraph/resque/id"
)

// Operation names.
const (
	OpEnqueue       = "enqueue"
	OpPop           = "pop"
	OpClear         = "clear"
	OpRemoveQueue   = "remove_queue"
	OpStatus        = "status"
	OpRecordFailure = "record_failure"
)

// Op describes one engine operation.
type Op struct {
	// Name is one of the Op* constants.
	Name string
	// Queue is the queue involved, if any.
	Queue string
	// Handler is the job handler name, if known.
	Handler string
	// JobID is the job involved, if known.
	JobID id.JobID
}

// Handler is the terminal function that performs the operation.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the operation, and the next handler
// to call. Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, op *Op, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// The first middleware in the list is the outermost wrapper.
//
// Example: Chain(logging, recover) executes as:
//
//	logging → recover → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, op *Op, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, op, prev)
			}
		}
		return h(ctx)
	}
}
