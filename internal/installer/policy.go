package installer

import (
	"fmt"
	"strings"

	"eznv-restore/internal/logger"
)

// Policy decides how a command result is reported and returns the severity it used.
type Policy interface {
	// Name is the value selecting this policy on the command line.
	Name() string
	// Report prints res and returns how severe it was.
	Report(log *logger.Logger, res Result) Severity
}

// StreamPolicy classifies results purely by stream content and ignores the
// exit code: stdout is success, stderr goes through ClassifyStderr.
type StreamPolicy struct{}

// Name implements Policy.
func (StreamPolicy) Name() string { return "stream" }

// Report prints stdout as success and stderr as an error or a warning,
// depending on whether it mentions "error".
func (StreamPolicy) Report(log *logger.Logger, res Result) Severity {
	if res.Err != nil {
		return reportFailure(log, res)
	}
	reportStdout(log, res)

	sev := ClassifyStderr(res.Stderr)
	switch sev {
	case SeverityError:
		log.Error("ERROR:\n%s\n", trimNewline(res.Stderr))
	case SeverityWarning:
		log.Warn("WARNING:\n%s\n", trimNewline(res.Stderr))
	}
	return sev
}

// ExitCodePolicy treats a non-zero exit as an error and any stderr from a
// successful command as a warning.
type ExitCodePolicy struct{}

// Name implements Policy.
func (ExitCodePolicy) Name() string { return "exit-code" }

// Report prints stdout as success, then stderr as an error when the exit
// code is non-zero or as a warning otherwise.
func (ExitCodePolicy) Report(log *logger.Logger, res Result) Severity {
	if res.Err != nil {
		return reportFailure(log, res)
	}
	reportStdout(log, res)

	if res.ExitCode != 0 {
		log.Error("ERROR (exit %d):\n%s\n", res.ExitCode, trimNewline(res.Stderr))
		return SeverityError
	}
	if res.Stderr != "" {
		log.Warn("WARNING:\n%s\n", trimNewline(res.Stderr))
		return SeverityWarning
	}
	return SeverityNone
}

// Policies lists the selectable policies by name.
var Policies = map[string]Policy{
	StreamPolicy{}.Name():   StreamPolicy{},
	ExitCodePolicy{}.Name(): ExitCodePolicy{},
}

// PolicyByName returns the named policy.
func PolicyByName(name string) (Policy, error) {
	p, ok := Policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (want %q or %q)", name, StreamPolicy{}.Name(), ExitCodePolicy{}.Name())
	}
	return p, nil
}

// reportStdout prints captured stdout, if any.
func reportStdout(log *logger.Logger, res Result) {
	if res.Stdout != "" {
		log.Success("%s\n", trimNewline(res.Stdout))
	}
}

// reportFailure handles results carrying Err. An interrupted command still
// shows what it printed before it was killed; anything else never ran.
func reportFailure(log *logger.Logger, res Result) Severity {
	if !res.Canceled() {
		log.Error("ERROR: could not run %q: %v\n", res.Command.String(), res.Err)
		return SeverityError
	}

	reportStdout(log, res)
	if res.Stderr != "" {
		log.Warn("WARNING:\n%s\n", trimNewline(res.Stderr))
	}
	log.Error("CANCELLED: %q was interrupted before it finished\n", res.Command.String())
	return SeverityError
}

// trimNewline drops trailing line breaks so every block ends with exactly one.
func trimNewline(s string) string {
	return strings.TrimRight(s, "\r\n")
}
