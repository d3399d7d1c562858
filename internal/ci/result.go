package ci

import (
	"encoding/json"
	"fmt"
	"time"

	"suitectl/internal/executor"
)

// Output formats understood by the integrator.
const (
	FormatJSON  = "json"
	FormatJUnit = "junit"
)

// Result is the outcome of one CI run. It is not modified once Run returns.
type Result struct {
	ID          string           `json:"id"`
	Suite       string           `json:"suite"`
	Environment Environment      `json:"environment"`
	Execution   *executor.Result `json:"execution"`
	Success     bool             `json:"success"`
	RetryCount  int              `json:"retryCount"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []string         `json:"artifacts"`
	StartedAt   time.Time        `json:"startedAt"`
	FinishedAt  time.Time        `json:"finishedAt"`
}

// ExitCode is the process exit code for the run: 0 on success, the
// engine's code otherwise (1 if the engine exited zero).
func (r *Result) ExitCode() int {
	if r.Success {
		return 0
	}
	if r.Execution != nil && r.Execution.ExitCode != 0 {
		return r.Execution.ExitCode
	}
	return 1
}

// MarshalIndent renders the result document.
func (r *Result) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseResultJSON reads a result document written by MarshalIndent.
func ParseResultJSON(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse result document: %w", err)
	}
	return &r, nil
}

// Succeeded applies the CI success policy. FailOnAnyFailure is checked
// first, then ContinueOnError; otherwise only the exit code counts.
func Succeeded(cfg Config, result *executor.Result) bool {
	if result == nil {
		return cfg.ContinueOnError && !cfg.FailOnAnyFailure
	}
	switch {
	case cfg.FailOnAnyFailure:
		return result.ExitCode == 0 && result.Failed == 0
	case cfg.ContinueOnError:
		return true
	default:
		return result.ExitCode == 0
	}
}
