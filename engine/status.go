package engine

import (
	"context"

	"github.com/xraph/resque/id"
	mw "github.com/xraph/resque/middleware"
	"github.com/xraph/resque/status"
)

// Status returns the status tracker. Unless one was injected with
// WithStatusTracker, a store-backed tracker is created on first call.
func (eng *Engine) Status() status.Tracker {
	eng.statusOnce.Do(func() {
		if eng.tracker == nil {
			eng.tracker = status.NewStoreTracker(eng.store, eng.keys,
				status.WithTTL(eng.r.Config().StatusTTL),
			)
		}
	})
	return eng.tracker
}

// UpdateStatus moves a tracked job to state and fires the status hooks.
func (eng *Engine) UpdateStatus(ctx context.Context, jobID id.JobID, state status.State) error {
	op := &mw.Op{Name: mw.OpStatus, JobID: jobID}
	return eng.run(ctx, op, func(ctx context.Context) error {
		if err := eng.Status().Update(ctx, jobID, state); err != nil {
			return err
		}
		eng.extensions.EmitStatusChanged(ctx, jobID, state)
		return nil
	})
}

// JobStatus returns the status record of jobID. ok is false when the job
// is not tracked or its record expired.
func (eng *Engine) JobStatus(ctx context.Context, jobID id.JobID) (*status.Record, bool, error) {
	return eng.Status().Get(ctx, jobID)
}
