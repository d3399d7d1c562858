package executor

import (
	"errors"
	"fmt"
	"time"
)

// ExitCodeTimeout is reported when the engine was killed on timeout.
const ExitCodeTimeout = 124

// Options are per-run settings that are not part of the suite.
type Options struct {
	// Environment selects the environment; empty means the suite default.
	Environment string
	DryRun      bool
	Verbose     bool
	NoCapture   bool
	// LogLevel is passed to the engine as --logging-level.
	LogLevel string
	// Timeout overrides the suite timeout when positive.
	Timeout time.Duration
}

// Result is the outcome of one engine run. It is not modified after the run returns.
type Result struct {
	SuiteName   string        `json:"suiteName"`
	ExitCode    int           `json:"exitCode"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Duration    time.Duration `json:"duration"`
	Output      string        `json:"output,omitempty"`
	ReportPaths []string      `json:"reportPaths"`
	Errors      []string      `json:"errors"`
	Command     string        `json:"command"`
	Attempts    int           `json:"attempts"`
	TimedOut    bool          `json:"timedOut,omitempty"`
	DryRun      bool          `json:"dryRun,omitempty"`
}

// Success reports a zero exit code with no failed scenarios.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Failed == 0
}

// Total is passed + failed + skipped.
func (r *Result) Total() int {
	return r.Passed + r.Failed + r.Skipped
}

// Err describes an unsuccessful engine exit as an *ExecutionError; failed
// scenarios with a zero exit code are not errors.
func (r *Result) Err() error {
	switch {
	case r.TimedOut:
		return &ExecutionError{Kind: KindTimeout, Suite: r.SuiteName, ExitCode: ExitCodeTimeout, Err: fmt.Errorf("timed out after %s", r.Duration.Round(time.Second))}
	case r.ExitCode != 0:
		return &ExecutionError{Kind: KindExit, Suite: r.SuiteName, ExitCode: r.ExitCode, Err: fmt.Errorf("engine exited with code %d", r.ExitCode)}
	}
	return nil
}

// ErrorKind classifies execution errors.
type ErrorKind string

const (
	// KindConfiguration: the suite could not be loaded or is invalid.
	KindConfiguration ErrorKind = "configuration"
	// KindStart: the engine could not be started.
	KindStart ErrorKind = "start"
	// KindTimeout: the engine ran past the suite timeout.
	KindTimeout ErrorKind = "timeout"
	// KindExit: the engine exited non-zero.
	KindExit ErrorKind = "exit"
)

// ExecutionError reports a run that failed outside of scenario failures.
type ExecutionError struct {
	Kind     ErrorKind
	Suite    string
	ExitCode int
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s error running suite '%s': %v", e.Kind, e.Suite, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsTimeout checks if an error is a timeout ExecutionError.
func IsTimeout(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr) && execErr.Kind == KindTimeout
}
