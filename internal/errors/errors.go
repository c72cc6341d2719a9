package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/smartsteps/internal/logger"
)

// ExitError carries a process exit code alongside the error that caused it.
// Commands such as validate and doctor return one to signal findings without
// treating them as crashes.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WithExitCode wraps err so Fatal exits with code.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode returns the exit code for err: 0 for nil, the wrapped code for an
// ExitError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Format renders err the way it is shown on stderr.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}

// Fatal logs err, prints it to stderr and exits with ExitCode(err). A nil
// err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err, "exit_code", ExitCode(err))
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(ExitCode(err))
}
