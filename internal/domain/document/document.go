// Package document holds the financial document model: the observable
// fields status derivation reads, the schema registry, and the status
// rules themselves.
package document

import (
	"github.com/shopspring/decimal"

	"github.com/openbooks/backend/internal/domain/money"
)

// Document is a snapshot of a persisted business record (an invoice, a
// payment, a stock transfer). Status derivation only ever reads it; the
// store owns mutation. Zero-value fields are valid and default to the
// "absent" semantics, so reads on partially populated documents stay total.
type Document struct {
	SchemaName string
	Name       string

	Submitted   bool
	Cancelled   bool
	NotInserted bool
	Dirty       bool

	Party    string
	Currency money.Currency

	// OutstandingAmount is the remaining unpaid balance on a submitted
	// invoice-like document. Exact decimal, never float.
	OutstandingAmount money.Money

	// StockNotTransferred is the quantity on a submitted invoice that has
	// not yet moved through a shipment or purchase receipt.
	StockNotTransferred decimal.Decimal

	// PaymentType distinguishes Receive/Pay on payment documents and is
	// implied by the source document's direction when a payment is derived.
	PaymentType string

	ExchangeRate decimal.Decimal
}

// Payment type values carried on derived payment documents
const (
	PaymentTypeReceive = "Receive"
	PaymentTypePay     = "Pay"
)

// HasPendingStock reports whether any stock quantity still awaits transfer
func (d *Document) HasPendingStock() bool {
	return d.StockNotTransferred.IsPositive()
}
