package action

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/backend/internal/application/port"
	"github.com/openbooks/backend/internal/domain/document"
	"github.com/openbooks/backend/internal/domain/money"
)

// fakeStore records calls so tests can assert call ordering
type fakeStore struct {
	port.DocumentStore

	payment  *port.PendingPayment
	transfer *document.Document

	calls       []string
	armedFn     port.PersistedFunc
	submitCalls int
}

func (f *fakeStore) NewPayment(ctx context.Context, doc *document.Document) (*port.PendingPayment, error) {
	f.calls = append(f.calls, "NewPayment")
	return f.payment, nil
}

func (f *fakeStore) NewStockTransfer(ctx context.Context, doc *document.Document) (*document.Document, error) {
	f.calls = append(f.calls, "NewStockTransfer")
	return f.transfer, nil
}

func (f *fakeStore) OnPersisted(pending *port.PendingPayment, fn port.PersistedFunc) *port.ArmedPayment {
	f.calls = append(f.calls, "OnPersisted")
	f.armedFn = fn
	return port.NewArmedPayment(pending)
}

func (f *fakeStore) Submit(ctx context.Context, doc *document.Document) error {
	f.calls = append(f.calls, "Submit")
	f.submitCalls++
	return nil
}

// fakeNavigator records navigation targets
type fakeNavigator struct {
	calls      []string
	paths      []string
	routeName  string
	routeParams map[string]string
	quickEdits []port.QuickEditRequest
}

func (f *fakeNavigator) RouteTo(ctx context.Context, path string) error {
	f.calls = append(f.calls, "RouteTo")
	f.paths = append(f.paths, path)
	return nil
}

func (f *fakeNavigator) Route(ctx context.Context, name string, params map[string]string) error {
	f.calls = append(f.calls, "Route")
	f.routeName = name
	f.routeParams = params
	return nil
}

func (f *fakeNavigator) QuickEdit(ctx context.Context, req port.QuickEditRequest) error {
	f.calls = append(f.calls, "QuickEdit")
	f.quickEdits = append(f.quickEdits, req)
	return nil
}

func submittedInvoice(outstanding string) *document.Document {
	return &document.Document{
		SchemaName:        document.SchemaSalesInvoice,
		Name:              "SINV-1001",
		Submitted:         true,
		Currency:          "USD",
		OutstandingAmount: money.MustFromString(outstanding, "USD"),
	}
}

func TestFor(t *testing.T) {
	registry := document.DefaultRegistry()

	t.Run("nil schema", func(t *testing.T) {
		assert.Nil(t, For(nil))
	})

	t.Run("non-submittable schema has no actions", func(t *testing.T) {
		item, ok := registry.Lookup(document.SchemaItem)
		require.True(t, ok)
		assert.Nil(t, For(item))
	})

	t.Run("invoice gets payment, stock transfer, ledger link", func(t *testing.T) {
		sinv, ok := registry.Lookup(document.SchemaSalesInvoice)
		require.True(t, ok)

		actions := For(sinv)
		require.Len(t, actions, 3)
		assert.Equal(t, "Payment", actions[0].Label)
		assert.Equal(t, "Shipment", actions[1].Label)
		assert.Equal(t, "Accounting Entries", actions[2].Label)
	})

	t.Run("generic submittable gets only ledger link", func(t *testing.T) {
		je, ok := registry.Lookup(document.SchemaJournalEntry)
		require.True(t, ok)

		actions := For(je)
		require.Len(t, actions, 1)
		assert.Equal(t, "Accounting Entries", actions[0].Label)
		assert.Equal(t, GroupView, actions[0].Group)
	})
}

func TestPayment_Condition(t *testing.T) {
	payment := Payment()

	tests := []struct {
		name     string
		doc      *document.Document
		expected bool
	}{
		{"submitted with balance", submittedInvoice("150.00"), true},
		{"submitted fully paid", submittedInvoice("0.00"), false},
		{"not submitted", &document.Document{
			SchemaName:        document.SchemaSalesInvoice,
			OutstandingAmount: money.MustFromString("150.00", "USD"),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, payment.Condition(tt.doc))
		})
	}
}

func TestPayment_Run_ArmsContinuationBeforeQuickEdit(t *testing.T) {
	doc := submittedInvoice("150.00")
	pending := &port.PendingPayment{Doc: &document.Document{
		SchemaName: document.SchemaPayment,
		Name:       "PAY-ABC12345",
	}}

	store := &fakeStore{payment: pending}
	nav := &fakeNavigator{}
	ac := Context{Store: store, Nav: nav}

	err := Payment().Run(context.Background(), doc, ac)
	require.NoError(t, err)

	// The continuation must be registered before the payment is handed to
	// the editing surface.
	require.Equal(t, []string{"NewPayment", "OnPersisted"}, store.calls)
	require.Equal(t, []string{"QuickEdit"}, nav.calls)

	require.Len(t, nav.quickEdits, 1)
	req := nav.quickEdits[0]
	assert.Same(t, pending.Doc, req.Payment.Doc())
	assert.Equal(t, []string{"party", "paymentType", "for"}, req.HideFields)

	// The armed continuation submits the payment once it syncs.
	require.NotNil(t, store.armedFn)
	require.NoError(t, store.armedFn(context.Background(), pending.Doc))
	assert.Equal(t, 1, store.submitCalls)
}

func TestPayment_Run_NoOpWhenNothingToDerive(t *testing.T) {
	store := &fakeStore{payment: nil}
	nav := &fakeNavigator{}
	ac := Context{Store: store, Nav: nav}

	err := Payment().Run(context.Background(), submittedInvoice("0.00"), ac)
	require.NoError(t, err)

	assert.Empty(t, nav.calls, "no navigation should occur when no payment derives")
	assert.NotContains(t, store.calls, "OnPersisted")
}

func TestStockTransfer_Label(t *testing.T) {
	registry := document.DefaultRegistry()

	sinv, _ := registry.Lookup(document.SchemaSalesInvoice)
	assert.Equal(t, "Shipment", StockTransfer(sinv).Label)

	pinv, _ := registry.Lookup(document.SchemaPurchaseInvoice)
	assert.Equal(t, "Purchase Receipt", StockTransfer(pinv).Label)
}

func TestStockTransfer_Condition(t *testing.T) {
	registry := document.DefaultRegistry()
	sinv, _ := registry.Lookup(document.SchemaSalesInvoice)
	transfer := StockTransfer(sinv)

	doc := submittedInvoice("0.00")
	assert.False(t, transfer.Condition(doc), "nothing pending transfer")

	doc.StockNotTransferred = decimal.NewFromInt(5)
	assert.True(t, transfer.Condition(doc))

	doc.Submitted = false
	assert.False(t, transfer.Condition(doc), "unsubmitted documents never transfer")
}

func TestStockTransfer_Run_RoutesToEditPage(t *testing.T) {
	registry := document.DefaultRegistry()
	sinv, _ := registry.Lookup(document.SchemaSalesInvoice)

	store := &fakeStore{transfer: &document.Document{
		SchemaName: document.SchemaShipment,
		Name:       "SHP-XYZ98765",
	}}
	nav := &fakeNavigator{}

	doc := submittedInvoice("0.00")
	doc.StockNotTransferred = decimal.NewFromInt(5)

	err := StockTransfer(sinv).Run(context.Background(), doc, Context{Store: store, Nav: nav})
	require.NoError(t, err)

	require.Equal(t, []string{"RouteTo"}, nav.calls)
	assert.Equal(t, "/edit/Shipment/SHP-XYZ98765", nav.paths[0])
}

func TestStockTransfer_Run_NoOpWhenNothingPending(t *testing.T) {
	registry := document.DefaultRegistry()
	sinv, _ := registry.Lookup(document.SchemaSalesInvoice)

	store := &fakeStore{transfer: nil}
	nav := &fakeNavigator{}

	err := StockTransfer(sinv).Run(context.Background(), submittedInvoice("0.00"), Context{Store: store, Nav: nav})
	require.NoError(t, err)
	assert.Empty(t, nav.calls)
}

func TestLedgerLink_Run(t *testing.T) {
	t.Run("general ledger", func(t *testing.T) {
		nav := &fakeNavigator{}
		doc := submittedInvoice("150.00")

		link := LedgerLink(false)
		assert.Equal(t, "Accounting Entries", link.Label)

		err := link.Run(context.Background(), doc, Context{Nav: nav})
		require.NoError(t, err)

		assert.Equal(t, "Report", nav.routeName)
		assert.Equal(t, ReportGeneralLedger, nav.routeParams["reportClassName"])

		var filters map[string]string
		require.NoError(t, json.Unmarshal([]byte(nav.routeParams["defaultFilters"]), &filters))
		assert.Equal(t, document.SchemaSalesInvoice, filters["referenceType"])
		assert.Equal(t, "SINV-1001", filters["referenceName"])
	})

	t.Run("stock ledger", func(t *testing.T) {
		nav := &fakeNavigator{}

		link := LedgerLink(true)
		assert.Equal(t, "Stock Entries", link.Label)

		err := link.Run(context.Background(), submittedInvoice("0.00"), Context{Nav: nav})
		require.NoError(t, err)
		assert.Equal(t, ReportStockLedger, nav.routeParams["reportClassName"])
	})
}

func TestApplicable(t *testing.T) {
	registry := document.DefaultRegistry()
	sinv, _ := registry.Lookup(document.SchemaSalesInvoice)
	actions := For(sinv)

	t.Run("paid invoice exposes only ledger link", func(t *testing.T) {
		applicable := Applicable(actions, submittedInvoice("0.00"))
		require.Len(t, applicable, 1)
		assert.Equal(t, "Accounting Entries", applicable[0].Label)
	})

	t.Run("unpaid invoice with pending stock exposes everything", func(t *testing.T) {
		doc := submittedInvoice("150.00")
		doc.StockNotTransferred = decimal.NewFromInt(3)

		applicable := Applicable(actions, doc)
		assert.Len(t, applicable, 3)
	})

	t.Run("draft invoice exposes nothing", func(t *testing.T) {
		doc := &document.Document{
			SchemaName:  document.SchemaSalesInvoice,
			NotInserted: true,
		}
		assert.Empty(t, Applicable(actions, doc))
	})
}
