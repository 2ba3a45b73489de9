package itembank

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every validation failure in this package.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports user input that was rejected before any
// request was made.
type InvalidArgumentError struct {
	// Param names the offending input, e.g. "endpoint" or "credentials".
	Param   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Param, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(param, message string, err error) *InvalidArgumentError {
	return &InvalidArgumentError{Param: param, Message: message, Err: err}
}
