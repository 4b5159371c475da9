package worker

import (
	"context"
	"errors"
	"os/exec"

	"github.com/alessio/shellescape"
)

// DefaultCommand lists processes with their command lines.
const DefaultCommand = "pgrep -fl"

// Output is what a process enumeration produced.
type Output struct {
	Stdout   []byte
	ExitCode int
}

// Enumerator lists processes matching a pattern. A non-zero exit status
// is reported in Output, not as an error; the error is reserved for
// failing to run the enumeration at all.
type Enumerator interface {
	Enumerate(ctx context.Context, pattern string) (Output, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(ctx context.Context, pattern string) (Output, error)

// Enumerate calls fn.
func (fn EnumeratorFunc) Enumerate(ctx context.Context, pattern string) (Output, error) {
	return fn(ctx, pattern)
}

// ShellEnumerator runs `sh -c "<Command> <quoted pattern>"`.
type ShellEnumerator struct {
	// Command is the enumeration command line. Empty means DefaultCommand.
	Command string
	// Shell is the shell binary. Empty means "sh".
	Shell string
}

// Enumerate runs the command and captures stdout and the exit status.
func (e ShellEnumerator) Enumerate(ctx context.Context, pattern string) (Output, error) {
	command := e.Command
	if command == "" {
		command = DefaultCommand
	}
	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command+" "+shellescape.Quote(pattern))
	stdout, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Output{Stdout: stdout, ExitCode: exitErr.ExitCode()}, nil
	}
	if err != nil {
		return Output{}, err
	}
	return Output{Stdout: stdout}, nil
}
