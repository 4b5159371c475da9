// Package failure records job execution failures.
//
// A [Backend] receives one [Failure] per call and either stores it or
// returns an error; it never drops a failure silently. [StoreBackend] is
// the default: it appends JSON records to the <prefix>:failed list and
// also offers the admin reads (Count, List, Clear) used by operators.
// [Multi] fans a failure out to several backends and [Func] adapts a plain
// function, e.g. to forward failures to an alerting system.
//
//	info := failure.FromError(err)
//	f := failure.New("mail", payload, info, workerID)
//	if err := backend.Record(ctx, f); err != nil { ... }
package failure
