// Package shared provides constants and types used across CLI subpackages.
package shared

import (
	"errors"
	"fmt"
)

// Exit codes for the changelog-sync CLI.
// Every failure exits 1 so scripts and CI only need to test for non-zero.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a missing input, invalid config or feature log,
	// a write failure, or drift found by check
	ExitFailure = 1
)

// Command group IDs for organizing help output.
const (
	GroupSync          = "sync"
	GroupConfiguration = "configuration"
	GroupInfo          = "info"
)

// ExitError carries an exit code for an error that has already been
// reported to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
