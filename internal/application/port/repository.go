package port

import (
	"context"

	"github.com/openbooks/backend/internal/domain/document"
	"github.com/openbooks/backend/internal/domain/money"
)

// PendingPayment is a derived payment document that has not been persisted
// yet. It is handed to the quick-edit surface only after its submit-on-sync
// continuation is registered; see ArmedPayment.
type PendingPayment struct {
	Doc *document.Document
}

// ArmedPayment wraps a pending payment whose after-sync continuation has
// been registered. Only DocumentStore.OnPersisted produces one, and the
// quick-edit surface only accepts one, which makes the
// registration-before-hand-off ordering a compile-time requirement.
type ArmedPayment struct {
	pending *PendingPayment
}

// NewArmedPayment is intended for DocumentStore implementations returning
// from OnPersisted. Action code should never construct one directly.
func NewArmedPayment(pending *PendingPayment) *ArmedPayment {
	return &ArmedPayment{pending: pending}
}

// Doc returns the payment document being edited
func (a *ArmedPayment) Doc() *document.Document {
	if a == nil || a.pending == nil {
		return nil
	}
	return a.pending.Doc
}

// Pending returns the wrapped pending payment
func (a *ArmedPayment) Pending() *PendingPayment {
	if a == nil {
		return nil
	}
	return a.pending
}

// PersistedFunc is the continuation invoked once a pending payment has
// completed its sync lifecycle event.
type PersistedFunc func(ctx context.Context, doc *document.Document) error

// DocumentStore is the persistence collaborator: it reads document fields,
// derives follow-on documents, and drives the submit/cancel lifecycle.
type DocumentStore interface {
	// Get retrieves a document by schema and name
	Get(ctx context.Context, schemaName, name string) (*document.Document, error)

	// Insert persists a new document; NotInserted and Dirty are cleared
	Insert(ctx context.Context, doc *document.Document) error

	// Update writes a document's mutable fields and clears Dirty
	Update(ctx context.Context, doc *document.Document) error

	// Submit marks a saved document submitted (lifecycle-validated)
	Submit(ctx context.Context, doc *document.Document) error

	// Cancel marks a submitted document cancelled (lifecycle-validated)
	Cancel(ctx context.Context, doc *document.Document) error

	// SetOutstanding updates the outstanding balance on a persisted document
	SetOutstanding(ctx context.Context, doc *document.Document, amount money.Money) error

	// NewPayment derives a payment covering the document's outstanding
	// balance. Returns (nil, nil) when the document does not support one;
	// that is an expected outcome, not an error.
	NewPayment(ctx context.Context, doc *document.Document) (*PendingPayment, error)

	// NewStockTransfer derives a shipment or purchase receipt for the
	// document's untransferred quantities. Returns (nil, nil) when nothing
	// is pending transfer.
	NewStockTransfer(ctx context.Context, doc *document.Document) (*document.Document, error)

	// OnPersisted registers a one-shot continuation fired when the pending
	// payment completes its sync. Must be called before the payment is
	// handed to any editing surface.
	OnPersisted(pending *PendingPayment, fn PersistedFunc) *ArmedPayment

	// Sync persists a pending payment and fires its after-sync continuations
	Sync(ctx context.Context, pending *PendingPayment) error
}
