package repository

import (
	"errors"
	"fmt"

	"suitectl/internal/validation"
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("suite not found")
	// ErrAlreadyExists matches every *AlreadyExistsError via errors.Is.
	ErrAlreadyExists = errors.New("suite already exists")
)

// NotFoundError reports a suite that does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("suite '%s' not found", e.Name)
}

// Is makes errors.Is(err, ErrNotFound) work.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError reports a suite name that is already taken.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("suite '%s' already exists", e.Name)
}

// Is makes errors.Is(err, ErrAlreadyExists) work.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// FileSystemError wraps an I/O or parse failure on a suite file.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// ValidationError reports a suite that failed validation while being
// written or imported. Result holds every finding.
type ValidationError struct {
	Name   string
	Result *validation.Result
}

func (e *ValidationError) Error() string {
	if e.Result == nil {
		return fmt.Sprintf("suite '%s' is invalid", e.Name)
	}
	return fmt.Sprintf("suite '%s' is invalid: %s", e.Name, e.Result.Errors.Error())
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already-exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func fsError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fsErr *FileSystemError
	if errors.As(err, &fsErr) {
		return err
	}
	return &FileSystemError{Op: op, Path: path, Err: err}
}
