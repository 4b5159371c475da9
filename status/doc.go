// Package status tracks the lifecycle of individual jobs.
//
// Each tracked job has one [Record] whose state moves through a small
// state machine:
//
//	queued → running → completed
//	queued → running → failed
//	queued → failed
//
// completed and failed are terminal. Re-asserting a non-terminal state
// (running → running) is accepted as a heartbeat. A record is created at
// most once: a second Create returns resque.ErrStatusExists. Terminal
// records are given a store TTL so they age out on their own.
//
// A missing record means "never tracked or expired", never "failed".
package status
