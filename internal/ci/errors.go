package ci

import (
	"errors"
	"fmt"
)

// SuiteExecutionError is returned when a CI run fails and ContinueOnError is off.
type SuiteExecutionError struct {
	Suite string
	Err   error
}

func (e *SuiteExecutionError) Error() string {
	return fmt.Sprintf("suite '%s' failed in CI: %v", e.Suite, e.Err)
}

func (e *SuiteExecutionError) Unwrap() error {
	return e.Err
}

// IsSuiteExecutionError checks if an error is a SuiteExecutionError
func IsSuiteExecutionError(err error) bool {
	var target *SuiteExecutionError
	return errors.As(err, &target)
}
