// Package exitcodes defines the process exit codes used by scriptest.
//
// * Success (0): every discovered test unit passed
// * TestFailure (1): one or more test units failed
// * RuntimeErr (2): the run could not be carried out (bad config, scratch directory errors, ...)
package exitcodes

import (
	"errors"
	"fmt"
)

const (
	Success     = 0 // All tests pass
	TestFailure = 1 // Test failures
	RuntimeErr  = 2 // Runtime errors
)

// RuntimeError represents an operational error that should lead to exit code 2
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError is returned by the run command when at least one unit failed
type TestFailureError struct {
	Failed int
	Total  int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("%d of %d test(s) failed", e.Failed, e.Total)
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

// FromError maps an error returned by a command to the process exit code
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case IsTestFailureError(err):
		return TestFailure
	default:
		return RuntimeErr
	}
}
