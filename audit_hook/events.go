package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionJobEnqueued     = "job.enqueued"
	ActionJobDequeued     = "job.dequeued"
	ActionQueueCleared    = "queue.cleared"
	ActionStatusChanged   = "status.changed"
	ActionFailureRecorded = "failure.recorded"
	ActionShutdown        = "engine.shutdown"
)

// Audit event categories group related actions.
const (
	CategoryJob     = "resque.job"
	CategoryQueue   = "resque.queue"
	CategoryFailure = "resque.failure"
	CategoryEngine  = "resque.engine"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceJob     = "job"
	ResourceQueue   = "queue"
	ResourceFailure = "failure"
	ResourceEngine  = "engine"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionJobEnqueued,
		ActionJobDequeued,
		ActionQueueCleared,
		ActionStatusChanged,
		ActionFailureRecorded,
		ActionShutdown,
	}
}
