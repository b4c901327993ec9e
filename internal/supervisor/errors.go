package supervisor

import (
	"errors"
	"fmt"
	"time"
)

// usageError marks a call made out of sequence or with bad arguments.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

var (
	// ErrAlreadyRunning is returned by Start while a previous child is still alive.
	ErrAlreadyRunning error = usageError{msg: "server is already running; terminate it first"}
	// ErrNotStarted is returned by WaitForHealth before Start.
	ErrNotStarted error = usageError{msg: "server has not been started"}
	// ErrInvalidArgument wraps rejected Start arguments.
	ErrInvalidArgument error = usageError{msg: "invalid argument"}
)

// IsUsage reports whether err indicates a misuse of the Supervisor API.
func IsUsage(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

func invalidArg(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, a...))
}

// HealthTimeoutError is returned when no 200 was observed before the deadline.
type HealthTimeoutError struct {
	Port    int
	Timeout time.Duration
}

func (e *HealthTimeoutError) Error() string {
	return fmt.Sprintf("server did not become healthy within %s on port %d", e.Timeout, e.Port)
}

// IsHealthTimeout reports whether err is (or wraps) a HealthTimeoutError.
func IsHealthTimeout(err error) bool {
	var h *HealthTimeoutError
	return errors.As(err, &h)
}

// ProcessExitedError is returned by WaitForHealth when the child died before
// becoming healthy.
type ProcessExitedError struct {
	Port       int
	Err        error
	StderrTail string
}

func (e *ProcessExitedError) Error() string {
	msg := fmt.Sprintf("server on port %d exited before becoming healthy", e.Port)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.StderrTail != "" {
		msg += "; stderr tail: " + e.StderrTail
	}
	return msg
}

func (e *ProcessExitedError) Unwrap() error { return e.Err }

// IsProcessExited reports whether err is (or wraps) a ProcessExitedError.
func IsProcessExited(err error) bool {
	var p *ProcessExitedError
	return errors.As(err, &p)
}
