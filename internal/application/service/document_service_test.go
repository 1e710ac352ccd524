package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/port"
	"github.com/openbooks/backend/internal/domain/document"
	"github.com/openbooks/backend/internal/domain/money"
)

// stubStore serves a single document and records derived-document calls
type stubStore struct {
	port.DocumentStore

	doc    *document.Document
	getErr error

	newPaymentCalls int
	onPersisted     int
}

func (s *stubStore) Get(ctx context.Context, schemaName, name string) (*document.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.doc, nil
}

func (s *stubStore) NewPayment(ctx context.Context, doc *document.Document) (*port.PendingPayment, error) {
	s.newPaymentCalls++
	return &port.PendingPayment{Doc: &document.Document{
		SchemaName: document.SchemaPayment,
		Name:       "PAY-TEST0001",
	}}, nil
}

func (s *stubStore) OnPersisted(pending *port.PendingPayment, fn port.PersistedFunc) *port.ArmedPayment {
	s.onPersisted++
	return port.NewArmedPayment(pending)
}

// noopNavigator accepts every navigation request
type noopNavigator struct {
	quickEdits int
}

func (n *noopNavigator) RouteTo(ctx context.Context, path string) error { return nil }

func (n *noopNavigator) Route(ctx context.Context, name string, params map[string]string) error {
	return nil
}

func (n *noopNavigator) QuickEdit(ctx context.Context, req port.QuickEditRequest) error {
	n.quickEdits++
	return nil
}

func newTestService(store *stubStore, nav *noopNavigator) *DocumentService {
	return NewDocumentService(document.DefaultRegistry(), store, nav, zap.NewNop())
}

func TestDocumentService_Status(t *testing.T) {
	store := &stubStore{doc: &document.Document{
		SchemaName:        document.SchemaSalesInvoice,
		Name:              "SINV-001",
		Submitted:         true,
		OutstandingAmount: money.MustFromString("40.00", "USD"),
	}}

	svc := newTestService(store, &noopNavigator{})

	status, err := svc.Status(context.Background(), document.SchemaSalesInvoice, "SINV-001")
	require.NoError(t, err)
	assert.Equal(t, document.StatusUnpaid, status)
}

func TestDocumentService_Status_StoreError(t *testing.T) {
	wantErr := errors.New("not found")
	store := &stubStore{getErr: wantErr}
	svc := newTestService(store, &noopNavigator{})

	_, err := svc.Status(context.Background(), document.SchemaSalesInvoice, "SINV-404")
	assert.ErrorIs(t, err, wantErr)
}

func TestDocumentService_Actions(t *testing.T) {
	store := &stubStore{doc: &document.Document{
		SchemaName:        document.SchemaSalesInvoice,
		Name:              "SINV-001",
		Submitted:         true,
		OutstandingAmount: money.MustFromString("40.00", "USD"),
	}}

	svc := newTestService(store, &noopNavigator{})

	descriptors, err := svc.Actions(context.Background(), document.SchemaSalesInvoice, "SINV-001")
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	byLabel := make(map[string]ActionDescriptor, len(descriptors))
	for _, d := range descriptors {
		byLabel[d.Label] = d
	}

	assert.True(t, byLabel["Payment"].Enabled)
	assert.False(t, byLabel["Shipment"].Enabled, "no stock pending transfer")
	assert.True(t, byLabel["Accounting Entries"].Enabled)
}

func TestDocumentService_Actions_NonSubmittable(t *testing.T) {
	store := &stubStore{doc: &document.Document{
		SchemaName: document.SchemaItem,
		Name:       "ITEM-001",
	}}

	svc := newTestService(store, &noopNavigator{})

	descriptors, err := svc.Actions(context.Background(), document.SchemaItem, "ITEM-001")
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestDocumentService_RunAction(t *testing.T) {
	t.Run("enabled action runs", func(t *testing.T) {
		store := &stubStore{doc: &document.Document{
			SchemaName:        document.SchemaSalesInvoice,
			Name:              "SINV-001",
			Submitted:         true,
			OutstandingAmount: money.MustFromString("40.00", "USD"),
		}}
		nav := &noopNavigator{}
		svc := newTestService(store, nav)

		err := svc.RunAction(context.Background(), document.SchemaSalesInvoice, "SINV-001", "Payment")
		require.NoError(t, err)
		assert.Equal(t, 1, store.newPaymentCalls)
		assert.Equal(t, 1, nav.quickEdits)
	})

	t.Run("disabled action is a silent no-op", func(t *testing.T) {
		store := &stubStore{doc: &document.Document{
			SchemaName:        document.SchemaSalesInvoice,
			Name:              "SINV-002",
			Submitted:         true,
			OutstandingAmount: money.MustFromString("0.00", "USD"),
		}}
		nav := &noopNavigator{}
		svc := newTestService(store, nav)

		err := svc.RunAction(context.Background(), document.SchemaSalesInvoice, "SINV-002", "Payment")
		require.NoError(t, err)
		assert.Zero(t, store.newPaymentCalls)
		assert.Zero(t, nav.quickEdits)
	})

	t.Run("unknown label", func(t *testing.T) {
		store := &stubStore{doc: &document.Document{
			SchemaName: document.SchemaSalesInvoice,
			Name:       "SINV-003",
			Submitted:  true,
		}}
		svc := newTestService(store, &noopNavigator{})

		err := svc.RunAction(context.Background(), document.SchemaSalesInvoice, "SINV-003", "Frobnicate")
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
}
