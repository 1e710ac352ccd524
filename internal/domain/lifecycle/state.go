// Package lifecycle validates document state transitions: a document moves
// draft -> saved -> submitted -> cancelled, and nothing else.
package lifecycle

// State represents a point in a document's persistence lifecycle
type State string

const (
	StateDraft     State = "DRAFT"
	StateSaved     State = "SAVED"
	StateSubmitted State = "SUBMITTED"
	StateCancelled State = "CANCELLED"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSaved:     true,
	StateSubmitted: true,
	StateCancelled: true,
}

var terminalStates = map[State]bool{
	StateCancelled: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
