package validation

import (
	"fmt"
	"strings"
)

// Issue is a single validation finding with the field it concerns.
type Issue struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// Error implements the error interface
func (i Issue) Error() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("field '%s': %s", i.Field, i.Message)
}

// Issues is an ordered collection of findings.
type Issues []Issue

// Error implements the error interface for multiple issues
func (is Issues) Error() string {
	if len(is) == 0 {
		return "no validation errors"
	}
	if len(is) == 1 {
		return is[0].Error()
	}

	var messages []string
	for _, issue := range is {
		messages = append(messages, issue.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add appends a finding.
func (is *Issues) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*is = append(*is, Issue{Field: field, Value: val, Message: message})
}

// Fields returns the distinct fields with findings, in first-seen order.
func (is Issues) Fields() []string {
	var fields []string
	seen := map[string]bool{}
	for _, issue := range is {
		if !seen[issue.Field] {
			seen[issue.Field] = true
			fields = append(fields, issue.Field)
		}
	}
	return fields
}

// Result is the outcome of validating a suite. Errors make it invalid,
// warnings never do.
type Result struct {
	Valid    bool                   `json:"valid"`
	Errors   Issues                 `json:"errors"`
	Warnings Issues                 `json:"warnings"`
	Details  map[string]interface{} `json:"details"`
}

// NewResult returns a valid, empty result.
func NewResult() *Result {
	return &Result{
		Valid:    true,
		Errors:   Issues{},
		Warnings: Issues{},
		Details:  map[string]interface{}{},
	}
}

// AddError records an error and marks the result invalid.
func (r *Result) AddError(field, message string, value ...interface{}) {
	r.Errors.Add(field, message, value...)
	r.Valid = false
}

// AddWarning records a warning.
func (r *Result) AddWarning(field, message string, value ...interface{}) {
	r.Warnings.Add(field, message, value...)
}

// Merge appends the findings and details of other.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	for k, v := range other.Details {
		r.Details[k] = v
	}
	if !other.Valid || len(r.Errors) > 0 {
		r.Valid = false
	}
}

// Err returns the errors as an error, or nil when the result is valid.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Errors
}
