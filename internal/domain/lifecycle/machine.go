package lifecycle

import "context"

// StateMachine tracks a document's current lifecycle state and validates
// transitions against the configured transition table.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}

// ForDocument builds the standard document lifecycle machine positioned at
// current. Non-submittable schemas never permit Submit, so their documents
// terminate at Saved.
func ForDocument(current State, submittable bool) StateMachine {
	b := NewBuilder()

	b.Configure(StateDraft).
		Permit(TriggerSave, StateSaved)

	saved := b.Configure(StateSaved)
	if submittable {
		saved.Permit(TriggerSubmit, StateSubmitted)
	}

	b.Configure(StateSubmitted).
		Permit(TriggerCancel, StateCancelled)

	return b.Build(current)
}

// StateOf maps a document's observable flags onto its lifecycle state
func StateOf(notInserted, submitted, cancelled bool) State {
	switch {
	case notInserted:
		return StateDraft
	case cancelled:
		return StateCancelled
	case submitted:
		return StateSubmitted
	default:
		return StateSaved
	}
}
