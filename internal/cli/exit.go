package cli

import (
	"errors"

	"github.com/specialistvlad/trainctl/internal/errdefs"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ToExitError maps user input errors (bad flags, values or files) to exit
// code 2. Other errors are returned unchanged.
func ToExitError(err error) error {
	var exitErr *ExitError
	if err == nil || errors.As(err, &exitErr) {
		return err
	}
	if errors.Is(err, errdefs.ErrParse) || errors.Is(err, errdefs.ErrFile) {
		return &ExitError{Code: 2, Message: err.Error(), Err: err}
	}
	return err
}
