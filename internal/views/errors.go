package views

import (
	"errors"
	"fmt"
)

// ValidationError is shown inline; the action that raised it changed nothing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(msg string) error { return &ValidationError{Message: msg} }

// ErrWrongScreen is returned for an action whose control is not on the
// visible screen.
var ErrWrongScreen = errors.New("action not available on this screen")

// WrongScreen wraps ErrWrongScreen with the screens involved.
func WrongScreen(want, got Screen) error {
	return fmt.Errorf("%w: needs %s, showing %s", ErrWrongScreen, want, got)
}
