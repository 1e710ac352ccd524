package event

// Type identifies the type of document lifecycle event
type Type string

const (
	TypeDocumentSynced    Type = "document.synced"
	TypeDocumentSubmitted Type = "document.submitted"
	TypeDocumentCancelled Type = "document.cancelled"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeDocumentSynced,
		TypeDocumentSubmitted,
		TypeDocumentCancelled:
		return true
	default:
		return false
	}
}
