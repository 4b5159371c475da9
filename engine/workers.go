package engine

import "context"

// Workers returns the registered worker ids, sorted.
func (eng *Engine) Workers(ctx context.Context) ([]string, error) {
	return eng.workers.List(ctx)
}

// WorkerExists reports whether workerID is registered.
func (eng *Engine) WorkerExists(ctx context.Context, workerID string) (bool, error) {
	return eng.workers.Exists(ctx, workerID)
}

// LivePIDs returns the pids of worker processes running on this host.
// Discovery failures are logged and yield an empty slice.
func (eng *Engine) LivePIDs(ctx context.Context) []int {
	return eng.discoverer.LivePIDs(ctx)
}

// Reconcile returns the registered workers of this host whose process is
// gone. Nothing is unregistered.
func (eng *Engine) Reconcile(ctx context.Context) ([]string, error) {
	return eng.discoverer.Reconcile(ctx)
}
