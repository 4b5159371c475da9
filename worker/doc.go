// Package worker reads the worker registry and discovers live worker
// processes.
//
// Worker processes register themselves in the <prefix>:workers set under
// an id of the form "host:pid:queue1,queue2". This package never writes
// that set; it lists it, tests membership, and cross-checks it against
// the processes actually running on this host.
//
// Process discovery goes through an [Enumerator]. [ShellEnumerator] runs
// the configured command (default "pgrep -fl") with the shell-escaped
// pattern appended. The exit status contract follows pgrep: 0 means
// matches, 1 means no matches, anything else is a discovery failure.
// Failures are logged as warnings and yield an empty result, since
// liveness discovery is advisory.
package worker
