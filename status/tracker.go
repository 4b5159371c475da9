package status

import (
	"context"
	"time"

	"github.com/xraph/resque/id"
)

// Record is the stored status of one job.
type Record struct {
	JobID     id.JobID  `json:"jobId"`
	State     State     `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tracker creates, advances and reads status records.
type Tracker interface {
	// Create writes a queued record. It fails with resque.ErrStatusExists
	// when jobID is already tracked.
	Create(ctx context.Context, jobID id.JobID) error

	// Update moves the record to state. It fails with
	// resque.ErrStatusNotFound for untracked ids and with
	// resque.ErrInvalidTransition for moves the state machine forbids.
	Update(ctx context.Context, jobID id.JobID, state State) error

	// Get returns the record. ok is false when it is absent.
	Get(ctx context.Context, jobID id.JobID) (rec *Record, ok bool, err error)

	// IsTracking reports whether a record exists.
	IsTracking(ctx context.Context, jobID id.JobID) (bool, error)

	// Stop deletes the record.
	Stop(ctx context.Context, jobID id.JobID) error
}
