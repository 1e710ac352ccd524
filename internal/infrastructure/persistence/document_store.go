package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/dispatcher"
	"github.com/openbooks/backend/internal/application/port"
	"github.com/openbooks/backend/internal/domain/document"
	"github.com/openbooks/backend/internal/domain/event"
	"github.com/openbooks/backend/internal/domain/lifecycle"
	"github.com/openbooks/backend/internal/domain/money"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// DocumentStore persists documents in SQLite and drives their lifecycle.
// Submit and Cancel are validated through the lifecycle machine; sync
// completion is announced through the event dispatcher so after-sync
// continuations fire exactly once.
type DocumentStore struct {
	db       *sql.DB
	registry *document.Registry
	events   dispatcher.Dispatcher
	logger   *zap.Logger
}

// NewDocumentStore creates a document store
func NewDocumentStore(db *sql.DB, registry *document.Registry, events dispatcher.Dispatcher, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		db:       db,
		registry: registry,
		events:   events,
		logger:   logger,
	}
}

const documentColumns = `schema_name, name, submitted, cancelled, dirty, party, currency,
	outstanding_amount, stock_not_transferred, payment_type, exchange_rate`

// Get retrieves a document by schema and name
func (s *DocumentStore) Get(ctx context.Context, schemaName, name string) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE schema_name = ? AND name = ?",
		schemaName, name,
	)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, schemaName, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// Insert persists a new document and clears its NotInserted and Dirty flags
func (s *DocumentStore) Insert(ctx context.Context, doc *document.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.SchemaName, doc.Name,
		doc.Submitted, doc.Cancelled, false,
		doc.Party, string(doc.Currency),
		doc.OutstandingAmount.Amount().String(),
		doc.StockNotTransferred.String(),
		doc.PaymentType,
		exchangeRateString(doc),
	)
	if err != nil {
		s.logger.Error("Failed to insert document",
			zap.String("schema", doc.SchemaName),
			zap.String("name", doc.Name),
			zap.Error(err))
		return fmt.Errorf("failed to insert document: %w", err)
	}

	doc.NotInserted = false
	doc.Dirty = false
	return nil
}

// Update writes a document's mutable fields and clears Dirty
func (s *DocumentStore) Update(ctx context.Context, doc *document.Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET
			submitted = ?, cancelled = ?, dirty = 0,
			party = ?, currency = ?,
			outstanding_amount = ?, stock_not_transferred = ?,
			payment_type = ?, exchange_rate = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE schema_name = ? AND name = ?
	`,
		doc.Submitted, doc.Cancelled,
		doc.Party, string(doc.Currency),
		doc.OutstandingAmount.Amount().String(),
		doc.StockNotTransferred.String(),
		doc.PaymentType,
		exchangeRateString(doc),
		doc.SchemaName, doc.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, doc.SchemaName, doc.Name)
	}

	doc.Dirty = false
	return nil
}

// Submit marks a saved document submitted after lifecycle validation
func (s *DocumentStore) Submit(ctx context.Context, doc *document.Document) error {
	schema, ok := s.registry.Lookup(doc.SchemaName)
	if !ok {
		return fmt.Errorf("unknown schema: %s", doc.SchemaName)
	}

	machine := lifecycle.ForDocument(
		lifecycle.StateOf(doc.NotInserted, doc.Submitted, doc.Cancelled),
		schema.Submittable,
	)
	if err := machine.Fire(ctx, lifecycle.TriggerSubmit); err != nil {
		return err
	}

	doc.Submitted = true
	if err := s.Update(ctx, doc); err != nil {
		doc.Submitted = false
		return err
	}

	s.events.DispatchAsync(ctx, event.New(event.TypeDocumentSubmitted, doc.SchemaName, doc.Name, nil))

	s.logger.Info("Document submitted",
		zap.String("schema", doc.SchemaName),
		zap.String("name", doc.Name))
	return nil
}

// Cancel marks a submitted document cancelled after lifecycle validation
func (s *DocumentStore) Cancel(ctx context.Context, doc *document.Document) error {
	schema, ok := s.registry.Lookup(doc.SchemaName)
	if !ok {
		return fmt.Errorf("unknown schema: %s", doc.SchemaName)
	}

	machine := lifecycle.ForDocument(
		lifecycle.StateOf(doc.NotInserted, doc.Submitted, doc.Cancelled),
		schema.Submittable,
	)
	if err := machine.Fire(ctx, lifecycle.TriggerCancel); err != nil {
		return err
	}

	doc.Cancelled = true
	if err := s.Update(ctx, doc); err != nil {
		doc.Cancelled = false
		return err
	}

	s.events.DispatchAsync(ctx, event.New(event.TypeDocumentCancelled, doc.SchemaName, doc.Name, nil))

	s.logger.Info("Document cancelled",
		zap.String("schema", doc.SchemaName),
		zap.String("name", doc.Name))
	return nil
}

// SetOutstanding updates the outstanding balance on a persisted document
func (s *DocumentStore) SetOutstanding(ctx context.Context, doc *document.Document, amount money.Money) error {
	doc.OutstandingAmount = amount
	return s.Update(ctx, doc)
}

// NewPayment derives a payment covering the document's outstanding balance.
// Returns (nil, nil) when the document is not submitted or nothing is
// outstanding; that is expected, not an error.
func (s *DocumentStore) NewPayment(ctx context.Context, doc *document.Document) (*port.PendingPayment, error) {
	if !doc.Submitted || doc.Cancelled || doc.OutstandingAmount.IsZero() {
		return nil, nil
	}

	schema, ok := s.registry.Lookup(doc.SchemaName)
	if !ok || schema.Kind != document.KindInvoice {
		return nil, nil
	}

	paymentType := document.PaymentTypeReceive
	if schema.Direction == document.DirectionInbound {
		paymentType = document.PaymentTypePay
	}

	payment := &document.Document{
		SchemaName:        document.SchemaPayment,
		Name:              generateName("PAY"),
		NotInserted:       true,
		Party:             doc.Party,
		Currency:          doc.OutstandingAmount.Currency(),
		OutstandingAmount: doc.OutstandingAmount,
		PaymentType:       paymentType,
	}

	return &port.PendingPayment{Doc: payment}, nil
}

// NewStockTransfer derives a shipment or purchase receipt for the
// document's untransferred quantities. Returns (nil, nil) when nothing is
// pending transfer.
func (s *DocumentStore) NewStockTransfer(ctx context.Context, doc *document.Document) (*document.Document, error) {
	if !doc.Submitted || doc.Cancelled || !doc.HasPendingStock() {
		return nil, nil
	}

	schema, ok := s.registry.Lookup(doc.SchemaName)
	if !ok || schema.Kind != document.KindInvoice {
		return nil, nil
	}

	transferSchema := document.SchemaShipment
	if schema.Direction == document.DirectionInbound {
		transferSchema = document.SchemaPurchaseReceipt
	}

	transfer := &document.Document{
		SchemaName:          transferSchema,
		Name:                generateName("TRF"),
		NotInserted:         true,
		Party:               doc.Party,
		Currency:            doc.Currency,
		StockNotTransferred: doc.StockNotTransferred,
	}

	if err := s.Insert(ctx, transfer); err != nil {
		return nil, err
	}

	return transfer, nil
}

// OnPersisted registers a one-shot continuation fired when the pending
// payment completes its sync. Registration precedes any hand-off to an
// editing surface; the returned ArmedPayment is the proof.
func (s *DocumentStore) OnPersisted(pending *port.PendingPayment, fn port.PersistedFunc) *port.ArmedPayment {
	doc := pending.Doc
	name := fmt.Sprintf("afterSync:%s:%s", doc.SchemaName, doc.Name)

	s.events.SubscribeOnce(event.TypeDocumentSynced, name,
		func(evt *event.Event) bool {
			return evt.Matches(doc.SchemaName, doc.Name)
		},
		func(ctx context.Context, evt *event.Event) error {
			return fn(ctx, doc)
		},
	)

	return port.NewArmedPayment(pending)
}

// Sync persists a pending payment and fires its after-sync continuations
// synchronously, so the caller observes their effects on return.
func (s *DocumentStore) Sync(ctx context.Context, pending *port.PendingPayment) error {
	if pending == nil || pending.Doc == nil {
		return errors.New("nothing to sync")
	}

	if err := s.Insert(ctx, pending.Doc); err != nil {
		return err
	}

	evt := event.New(event.TypeDocumentSynced, pending.Doc.SchemaName, pending.Doc.Name, nil)
	if err := s.events.Dispatch(ctx, evt); err != nil {
		return fmt.Errorf("after-sync handlers: %w", err)
	}

	return nil
}

// scanner abstracts sql.Row / sql.Rows for scanDocument
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*document.Document, error) {
	var (
		doc          document.Document
		currency     string
		outstanding  string
		stockPending string
		exchangeRate string
	)

	err := row.Scan(
		&doc.SchemaName, &doc.Name,
		&doc.Submitted, &doc.Cancelled, &doc.Dirty,
		&doc.Party, &currency,
		&outstanding, &stockPending, &doc.PaymentType, &exchangeRate,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(outstanding)
	if err != nil {
		return nil, fmt.Errorf("invalid outstanding amount %q: %w", outstanding, err)
	}
	doc.OutstandingAmount, err = money.New(amount, money.Currency(currency))
	if err != nil {
		return nil, err
	}

	doc.StockNotTransferred, err = decimal.NewFromString(stockPending)
	if err != nil {
		return nil, fmt.Errorf("invalid stock quantity %q: %w", stockPending, err)
	}

	doc.ExchangeRate, err = decimal.NewFromString(exchangeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange rate %q: %w", exchangeRate, err)
	}

	doc.Currency = money.Currency(currency)
	return &doc, nil
}

func exchangeRateString(doc *document.Document) string {
	if doc.ExchangeRate.IsZero() {
		return "1"
	}
	return doc.ExchangeRate.String()
}

// generateName builds a document identifier like PAY-1A2B3C4D
func generateName(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%s", prefix, id[:8])
}
