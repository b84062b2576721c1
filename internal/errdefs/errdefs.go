// Package errdefs defines the error taxonomy shared by the parser, the
// registry and the application pipeline. Callers classify failures with
// errors.Is against the sentinels below.
package errdefs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrParse reports malformed or unknown command-line, environment or file input.
	ErrParse = errors.New("parse error")
	// ErrTypeMismatch reports a class that does not provide the capability it is registered for.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrFile reports a configuration file that cannot be read, parsed or written.
	ErrFile = errors.New("file error")
	// ErrConstruction reports a class that could not be instantiated.
	ErrConstruction = errors.New("construction error")
	// ErrState reports an operation invoked before the state it depends on exists.
	ErrState = errors.New("state error")
)

// ConstructionError is returned when a class cannot be instantiated, either
// because a required argument is unresolved or because its constructor failed.
// It matches ErrConstruction and unwraps to the underlying cause.
type ConstructionError struct {
	Class string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction error: %s: %v", e.Class, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConstruction) succeed for any ConstructionError.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}
