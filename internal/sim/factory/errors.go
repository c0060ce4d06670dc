package factory

import (
	"errors"
	"fmt"

	"robotsline.dev/internal/sim/materials"
)

// ErrNotEnoughMaterial is returned by stock operations whose resource
// preconditions fail. Nothing is deducted when it is returned.
var ErrNotEnoughMaterial = errors.New("not enough material")

// ErrGameOver is the terminal signal: the roster reached the configured
// robot limit during a wait round. It is never swallowed by the
// dispatcher; callers must stop driving the simulation once they see it.
var ErrGameOver = errors.New("game over: robot limit reached")

// InvalidTransitionError reports a state-machine precondition failure with
// a human-readable reason. The dispatcher logs it and drops the command.
type InvalidTransitionError struct {
	Reason string
	Cause  error
}

func (e *InvalidTransitionError) Error() string {
	if e.Cause != nil {
		return e.Reason + ": " + e.Cause.Error()
	}
	return e.Reason
}

func (e *InvalidTransitionError) Unwrap() error { return e.Cause }

func invalidTransitionf(format string, args ...any) error {
	return &InvalidTransitionError{Reason: fmt.Sprintf(format, args...)}
}

// recoverable reports whether err is a domain error the dispatcher absorbs
// (logged, command dropped, state untouched) rather than propagates.
func recoverable(err error) bool {
	var (
		transition *InvalidTransitionError
		badLoc     *materials.UnknownLocationError
		badMat     *materials.UnknownMaterialError
	)
	return errors.Is(err, ErrNotEnoughMaterial) ||
		errors.As(err, &transition) ||
		errors.As(err, &badLoc) ||
		errors.As(err, &badMat)
}
