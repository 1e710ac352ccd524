package action

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/port"
	"github.com/openbooks/backend/internal/domain/document"
)

// Report class names for the ledger link action
const (
	ReportGeneralLedger = "GeneralLedger"
	ReportStockLedger   = "StockLedger"
)

// Fields pre-hidden on the payment quick-edit surface; context already
// implies them.
var paymentHiddenFields = []string{"party", "paymentType", "for"}

// InvoiceActions returns the ordered actions for an invoice-like schema:
// payment, stock transfer, ledger link.
func InvoiceActions(schema *document.Schema) []Action {
	return []Action{
		Payment(),
		StockTransfer(schema),
		LedgerLink(false),
	}
}

// For returns the ordered actions applicable to the given schema. Only
// submittable schemas expose actions; invoice kinds get the full set, other
// submittable kinds just the ledger link.
func For(schema *document.Schema) []Action {
	if schema == nil || !schema.Submittable {
		return nil
	}

	if schema.Kind == document.KindInvoice {
		return InvoiceActions(schema)
	}

	return []Action{LedgerLink(false)}
}

// Payment returns the create-payment action. It is visible while the
// document is submitted with a non-zero outstanding balance, and disappears
// the moment the balance reaches zero.
func Payment() Action {
	return Action{
		Label: "Payment",
		Group: GroupCreate,
		Condition: func(doc *document.Document) bool {
			return doc.Submitted && !doc.OutstandingAmount.IsZero()
		},
		Run: func(ctx context.Context, doc *document.Document, ac Context) error {
			pending, err := ac.Store.NewPayment(ctx, doc)
			if err != nil {
				return fmt.Errorf("derive payment: %w", err)
			}
			if pending == nil {
				// Document is not in a state that supports a payment;
				// expected outcome, abort silently.
				return nil
			}

			// The continuation must be armed before the payment reaches the
			// editing surface so a user-triggered save cannot race it.
			armed := ac.Store.OnPersisted(pending, func(ctx context.Context, payment *document.Document) error {
				return ac.Store.Submit(ctx, payment)
			})

			return ac.Nav.QuickEdit(ctx, port.QuickEditRequest{
				Payment:    armed,
				HideFields: paymentHiddenFields,
			})
		},
	}
}

// StockTransfer returns the create-stock-transfer action for the schema.
// Outbound documents produce a Shipment, inbound ones a Purchase Receipt.
func StockTransfer(schema *document.Schema) Action {
	label := "Shipment"
	if schema != nil && schema.Direction == document.DirectionInbound {
		label = "Purchase Receipt"
	}

	return Action{
		Label: label,
		Group: GroupCreate,
		Condition: func(doc *document.Document) bool {
			return doc.Submitted && doc.HasPendingStock()
		},
		Run: func(ctx context.Context, doc *document.Document, ac Context) error {
			transfer, err := ac.Store.NewStockTransfer(ctx, doc)
			if err != nil {
				return fmt.Errorf("derive stock transfer: %w", err)
			}
			if transfer == nil {
				return nil
			}

			path := fmt.Sprintf("/edit/%s/%s", transfer.SchemaName, transfer.Name)
			return ac.Nav.RouteTo(ctx, path)
		},
	}
}

// LedgerLink returns the view-ledger action. With stock=true it targets the
// stock ledger instead of the general ledger.
func LedgerLink(stock bool) Action {
	label := "Accounting Entries"
	reportClassName := ReportGeneralLedger
	if stock {
		label = "Stock Entries"
		reportClassName = ReportStockLedger
	}

	return Action{
		Label: label,
		Group: GroupView,
		Condition: func(doc *document.Document) bool {
			return doc.Submitted
		},
		Run: func(ctx context.Context, doc *document.Document, ac Context) error {
			params, err := ledgerLinkParams(doc, reportClassName)
			if err != nil {
				return err
			}
			return ac.Nav.Route(ctx, "Report", params)
		},
	}
}

// ledgerLinkParams builds the Report route parameters with the filter
// payload serialized for transport.
func ledgerLinkParams(doc *document.Document, reportClassName string) (map[string]string, error) {
	filters, err := json.Marshal(map[string]string{
		"referenceType": doc.SchemaName,
		"referenceName": doc.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ledger filters: %w", err)
	}

	return map[string]string{
		"reportClassName": reportClassName,
		"defaultFilters":  string(filters),
	}, nil
}

// LogSkipped records that an action aborted without effect; callers use it
// for diagnostics only, never for user-facing errors.
func LogSkipped(logger *zap.Logger, label string, doc *document.Document) {
	if logger == nil {
		return
	}
	logger.Debug("Action not applicable",
		zap.String("action", label),
		zap.String("schema", doc.SchemaName),
		zap.String("name", doc.Name))
}
