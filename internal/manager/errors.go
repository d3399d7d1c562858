package manager

import (
	"errors"
	"fmt"

	"suitectl/internal/validation"
)

// InvariantError reports a suite that breaks the rules every stored suite
// must satisfy. Result lists every violation.
type InvariantError struct {
	Name   string
	Result *validation.Result
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("suite '%s' violates invariants: %s", e.Name, e.Result.Errors.Error())
}

// DeletionRefusedError reports a delete that was refused without force.
type DeletionRefusedError struct {
	Name   string
	Reason string
	Err    error
}

func (e *DeletionRefusedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("refusing to delete suite '%s': %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("refusing to delete suite '%s': %s", e.Name, e.Reason)
}

func (e *DeletionRefusedError) Unwrap() error {
	return e.Err
}

// IsInvariantError checks if an error is an InvariantError.
func IsInvariantError(err error) bool {
	var invErr *InvariantError
	return errors.As(err, &invErr)
}
