package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a lifecycle transition is not allowed
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrInvalidState is returned when a state is not a valid lifecycle state
	ErrInvalidState = errors.New("invalid lifecycle state")

	// ErrGuardFailed is returned when a transition guard rejects the trigger
	ErrGuardFailed = errors.New("guard condition failed")
)
