package document

// Status is the derived lifecycle status of a document at an observation
// instant. It is a pure projection of the document's fields and is never
// stored; mutating any source field changes the derived status on next read.
type Status string

const (
	// Generic tier
	StatusDraft     Status = "Draft"
	StatusNotSaved  Status = "NotSaved"
	StatusSaved     Status = "Saved"
	StatusSubmitted Status = "Submitted"
	StatusCancelled Status = "Cancelled"

	// Invoice tier (shares Saved and Cancelled with the generic tier)
	StatusUnpaid Status = "Unpaid"
	StatusPaid   Status = "Paid"
)

var validStatuses = map[Status]bool{
	StatusDraft:     true,
	StatusNotSaved:  true,
	StatusSaved:     true,
	StatusSubmitted: true,
	StatusCancelled: true,
	StatusUnpaid:    true,
	StatusPaid:      true,
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known values
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// DisplayText returns the human-readable label for the status
func (s Status) DisplayText() string {
	if s == StatusNotSaved {
		return "Not Saved"
	}
	return string(s)
}
