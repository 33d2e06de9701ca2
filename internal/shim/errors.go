package shim

import (
	"errors"
	"fmt"
)

// LoadError is a failure to load or execute a discovered file
type LoadError struct {
	Path     string
	ExitCode int // Interpreter exit code, -1 when the process never ran
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError checks if the error is or wraps a LoadError
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}
