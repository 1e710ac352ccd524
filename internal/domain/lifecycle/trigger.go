package lifecycle

// Trigger represents an operation that can cause a lifecycle transition
type Trigger string

const (
	TriggerSave   Trigger = "SAVE"
	TriggerSubmit Trigger = "SUBMIT"
	TriggerCancel Trigger = "CANCEL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
