package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// killWaitDelay bounds how long Run keeps reading a killed command's output.
// Grandchildren that inherited stdout would otherwise hold Run open.
const killWaitDelay = 5 * time.Second

// Result captures everything a finished command produced.
// ExitCode is -1 when the process never started or was killed by a signal.
type Result struct {
	Command  Command
	Stdout   string
	Stderr   string
	ExitCode int
	// Err is set when the command could not be started or waited on, or
	// holds the context error when the command was interrupted.
	// A non-zero exit alone is not an error here; policies decide that.
	Err error
}

// Canceled reports whether the command was stopped by context cancellation.
// Stdout and Stderr still hold whatever it wrote before it was killed.
func (r Result) Canceled() bool {
	return errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)
}

// Runner executes a single command and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands as child processes with stdout and stderr captured
// separately. No timeout is applied; ctx cancellation kills the child.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	res := Result{Command: cmd, ExitCode: -1}
	if len(cmd.Args) == 0 || cmd.Args[0] == "" {
		res.Err = errors.New("empty command")
		return res
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = r.Dir
	c.WaitDelay = killWaitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			res.Err = ctx.Err()
		}
	default:
		res.Err = fmt.Errorf("failed to run %s: %w", cmd.Args[0], err)
	}
	return res
}

// Severity is how a command result is reported.
type Severity int

const (
	// SeverityNone means nothing needed attention.
	SeverityNone Severity = iota
	// SeverityWarning marks output worth reading that did not fail the item.
	SeverityWarning
	// SeverityError marks an item that failed or could not run.
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "none"
	}
}

// ClassifyStderr applies the stream heuristic: empty stderr is nothing,
// stderr mentioning "error" in any case is an error, anything else a warning.
func ClassifyStderr(stderr string) Severity {
	switch {
	case stderr == "":
		return SeverityNone
	case strings.Contains(strings.ToLower(stderr), "error"):
		return SeverityError
	default:
		return SeverityWarning
	}
}
