package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/dispatcher"
	"github.com/openbooks/backend/internal/domain/document"
	"github.com/openbooks/backend/internal/domain/event"
	"github.com/openbooks/backend/internal/domain/lifecycle"
	"github.com/openbooks/backend/internal/domain/money"
)

func newTestStore(t *testing.T) (*DocumentStore, dispatcher.Dispatcher) {
	t.Helper()

	events := dispatcher.New()
	t.Cleanup(func() { events.Close() })

	store := NewDocumentStore(newTestDB(t).DB, document.DefaultRegistry(), events, zap.NewNop())
	return store, events
}

func sampleInvoice(name string) *document.Document {
	return &document.Document{
		SchemaName:          document.SchemaSalesInvoice,
		Name:                name,
		NotInserted:         true,
		Party:               "Acme Corp",
		Currency:            money.USD,
		OutstandingAmount:   money.MustFromString("250.00", money.USD),
		StockNotTransferred: decimal.NewFromInt(4),
	}
}

func TestDocumentStore_InsertAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := sampleInvoice("SINV-001")
	require.NoError(t, store.Insert(ctx, doc))
	assert.False(t, doc.NotInserted)
	assert.False(t, doc.Dirty)

	loaded, err := store.Get(ctx, document.SchemaSalesInvoice, "SINV-001")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", loaded.Party)
	assert.Equal(t, money.USD, loaded.Currency)
	assert.True(t, loaded.OutstandingAmount.Equal(money.MustFromString("250.00", money.USD)))
	assert.True(t, loaded.StockNotTransferred.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "1", loaded.ExchangeRate.String())
}

func TestDocumentStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), document.SchemaSalesInvoice, "SINV-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_UpdateMissing(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Update(context.Background(), sampleInvoice("SINV-404"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_SubmitLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := sampleInvoice("SINV-010")
	require.NoError(t, store.Insert(ctx, doc))
	require.NoError(t, store.Submit(ctx, doc))
	assert.True(t, doc.Submitted)

	loaded, err := store.Get(ctx, document.SchemaSalesInvoice, "SINV-010")
	require.NoError(t, err)
	assert.True(t, loaded.Submitted)

	// Submitting again is rejected by the lifecycle.
	err = store.Submit(ctx, loaded)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestDocumentStore_SubmitDraftRejected(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Submit(context.Background(), sampleInvoice("SINV-011"))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestDocumentStore_SubmitNonSubmittable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := &document.Document{
		SchemaName:  document.SchemaItem,
		Name:        "ITEM-001",
		NotInserted: true,
	}
	require.NoError(t, store.Insert(ctx, doc))

	err := store.Submit(ctx, doc)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestDocumentStore_CancelLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := sampleInvoice("SINV-020")
	require.NoError(t, store.Insert(ctx, doc))

	// Cancel before submit is rejected.
	require.ErrorIs(t, store.Cancel(ctx, doc), lifecycle.ErrInvalidTransition)

	require.NoError(t, store.Submit(ctx, doc))
	require.NoError(t, store.Cancel(ctx, doc))

	loaded, err := store.Get(ctx, document.SchemaSalesInvoice, "SINV-020")
	require.NoError(t, err)
	assert.True(t, loaded.Cancelled)
}

func TestDocumentStore_SetOutstanding(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := sampleInvoice("SINV-030")
	require.NoError(t, store.Insert(ctx, doc))
	require.NoError(t, store.SetOutstanding(ctx, doc, money.Zero(money.USD)))

	loaded, err := store.Get(ctx, document.SchemaSalesInvoice, "SINV-030")
	require.NoError(t, err)
	assert.True(t, loaded.OutstandingAmount.IsZero())
}

func TestDocumentStore_NewPayment(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("sales invoice derives a receive payment", func(t *testing.T) {
		doc := sampleInvoice("SINV-040")
		doc.NotInserted = false
		doc.Submitted = true

		pending, err := store.NewPayment(ctx, doc)
		require.NoError(t, err)
		require.NotNil(t, pending)

		payment := pending.Doc
		assert.Equal(t, document.SchemaPayment, payment.SchemaName)
		assert.True(t, strings.HasPrefix(payment.Name, "PAY-"))
		assert.True(t, payment.NotInserted)
		assert.Equal(t, "Acme Corp", payment.Party)
		assert.Equal(t, document.PaymentTypeReceive, payment.PaymentType)
		assert.True(t, payment.OutstandingAmount.Equal(doc.OutstandingAmount))
	})

	t.Run("purchase invoice derives a pay payment", func(t *testing.T) {
		doc := sampleInvoice("PINV-040")
		doc.SchemaName = document.SchemaPurchaseInvoice
		doc.NotInserted = false
		doc.Submitted = true

		pending, err := store.NewPayment(ctx, doc)
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.Equal(t, document.PaymentTypePay, pending.Doc.PaymentType)
	})

	t.Run("nothing outstanding derives nothing", func(t *testing.T) {
		doc := sampleInvoice("SINV-041")
		doc.NotInserted = false
		doc.Submitted = true
		doc.OutstandingAmount = money.Zero(money.USD)

		pending, err := store.NewPayment(ctx, doc)
		require.NoError(t, err)
		assert.Nil(t, pending)
	})

	t.Run("cancelled invoice derives nothing", func(t *testing.T) {
		doc := sampleInvoice("SINV-042")
		doc.NotInserted = false
		doc.Submitted = true
		doc.Cancelled = true

		pending, err := store.NewPayment(ctx, doc)
		require.NoError(t, err)
		assert.Nil(t, pending)
	})

	t.Run("non-invoice schema derives nothing", func(t *testing.T) {
		doc := &document.Document{
			SchemaName:        document.SchemaJournalEntry,
			Name:              "JV-001",
			Submitted:         true,
			OutstandingAmount: money.MustFromString("10.00", money.USD),
		}

		pending, err := store.NewPayment(ctx, doc)
		require.NoError(t, err)
		assert.Nil(t, pending)
	})
}

func TestDocumentStore_NewStockTransfer(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("sales invoice derives a shipment", func(t *testing.T) {
		doc := sampleInvoice("SINV-050")
		doc.NotInserted = false
		doc.Submitted = true

		transfer, err := store.NewStockTransfer(ctx, doc)
		require.NoError(t, err)
		require.NotNil(t, transfer)

		assert.Equal(t, document.SchemaShipment, transfer.SchemaName)
		assert.True(t, strings.HasPrefix(transfer.Name, "TRF-"))

		// The transfer is persisted immediately.
		loaded, err := store.Get(ctx, document.SchemaShipment, transfer.Name)
		require.NoError(t, err)
		assert.True(t, loaded.StockNotTransferred.Equal(decimal.NewFromInt(4)))
	})

	t.Run("purchase invoice derives a purchase receipt", func(t *testing.T) {
		doc := sampleInvoice("PINV-050")
		doc.SchemaName = document.SchemaPurchaseInvoice
		doc.NotInserted = false
		doc.Submitted = true

		transfer, err := store.NewStockTransfer(ctx, doc)
		require.NoError(t, err)
		require.NotNil(t, transfer)
		assert.Equal(t, document.SchemaPurchaseReceipt, transfer.SchemaName)
	})

	t.Run("nothing pending derives nothing", func(t *testing.T) {
		doc := sampleInvoice("SINV-051")
		doc.NotInserted = false
		doc.Submitted = true
		doc.StockNotTransferred = decimal.Zero

		transfer, err := store.NewStockTransfer(ctx, doc)
		require.NoError(t, err)
		assert.Nil(t, transfer)
	})
}

func TestDocumentStore_OnPersistedAndSync(t *testing.T) {
	store, events := newTestStore(t)
	ctx := context.Background()

	invoice := sampleInvoice("SINV-060")
	invoice.NotInserted = false
	invoice.Submitted = true

	pending, err := store.NewPayment(ctx, invoice)
	require.NoError(t, err)
	require.NotNil(t, pending)

	var continuationCalls int
	armed := store.OnPersisted(pending, func(ctx context.Context, payment *document.Document) error {
		continuationCalls++
		return store.Submit(ctx, payment)
	})
	require.Same(t, pending.Doc, armed.Doc())

	require.NoError(t, store.Sync(ctx, pending))

	// The continuation ran synchronously, submitting the payment.
	assert.Equal(t, 1, continuationCalls)

	loaded, err := store.Get(ctx, document.SchemaPayment, pending.Doc.Name)
	require.NoError(t, err)
	assert.True(t, loaded.Submitted)

	// The one-shot continuation removed itself after firing.
	assert.Empty(t, events.ListHandlers(event.TypeDocumentSynced))
}

func TestDocumentStore_SyncNothing(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Sync(context.Background(), nil))
}
