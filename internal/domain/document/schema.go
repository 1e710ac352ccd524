package document

import (
	"fmt"
	"sync"
)

// Kind selects the status rule a submittable schema uses. The rule is bound
// once at registration time instead of comparing schema names on every read.
type Kind string

const (
	KindGeneric Kind = "Generic"
	KindInvoice Kind = "Invoice"
)

// Direction marks which way goods move for a schema, which decides whether a
// derived stock transfer is a shipment or a purchase receipt.
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionOutbound Direction = "Outbound"
	DirectionInbound  Direction = "Inbound"
)

// Well-known schema names
const (
	SchemaSalesInvoice    = "SalesInvoice"
	SchemaPurchaseInvoice = "PurchaseInvoice"
	SchemaPayment         = "Payment"
	SchemaJournalEntry    = "JournalEntry"
	SchemaShipment        = "Shipment"
	SchemaPurchaseReceipt = "PurchaseReceipt"
	SchemaStockMovement   = "StockMovement"
	SchemaItem            = "Item"
	SchemaParty           = "Party"
)

// statusFunc derives the status of a persisted, clean, submittable document
type statusFunc func(*Document) Status

// Schema describes a registered document type: its kind, direction and
// whether it participates in the submit workflow.
type Schema struct {
	Name        string
	Kind        Kind
	Direction   Direction
	Submittable bool

	submittableStatus statusFunc
}

// Status derives the document's lifecycle status. Priority-ordered, first
// match wins; the ordering is part of the contract (a never-inserted dirty
// document is Draft, not NotSaved). Total over its input: zero-value fields
// resolve like absent ones and the function never panics.
func (s *Schema) Status(doc *Document) Status {
	if doc == nil {
		return StatusDraft
	}

	if doc.NotInserted {
		return StatusDraft
	}

	if doc.Dirty {
		return StatusNotSaved
	}

	if !s.Submittable {
		return StatusSaved
	}

	return s.submittableStatus(doc)
}

// genericStatus is the status rule for submittable, non-invoice schemas
func genericStatus(doc *Document) Status {
	if doc.Submitted && !doc.Cancelled {
		return StatusSubmitted
	}

	if doc.Submitted && doc.Cancelled {
		return StatusCancelled
	}

	return StatusSaved
}

// invoiceStatus is the specialized rule for invoice-like schemas. Cancelled
// overrides both Paid and Unpaid regardless of the outstanding balance.
func invoiceStatus(doc *Document) Status {
	if doc.Submitted && !doc.Cancelled && doc.OutstandingAmount.IsZero() {
		return StatusPaid
	}

	if doc.Submitted && !doc.Cancelled && doc.OutstandingAmount.IsPositive() {
		return StatusUnpaid
	}

	if doc.Cancelled {
		return StatusCancelled
	}

	return StatusSaved
}

var statusFuncs = map[Kind]statusFunc{
	KindGeneric: genericStatus,
	KindInvoice: invoiceStatus,
}

// Registry maps schema names to registered schemas. It is safe for
// concurrent reads after setup.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty schema registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema to the registry, binding its status rule from its
// kind. Registering an unknown kind or a duplicate name is an error.
func (r *Registry) Register(s Schema) error {
	fn, ok := statusFuncs[s.Kind]
	if !ok {
		return fmt.Errorf("unknown document kind: %q", s.Kind)
	}
	if s.Name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.Name]; exists {
		return fmt.Errorf("schema already registered: %s", s.Name)
	}

	s.submittableStatus = fn
	r.schemas[s.Name] = &s
	return nil
}

// Lookup returns the schema registered under name
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[name]
	return s, ok
}

// Status derives the status of doc using its registered schema. Documents
// with an unregistered schema fall back to the non-submittable rule so the
// read path stays total.
func (r *Registry) Status(doc *Document) Status {
	if doc == nil {
		return StatusDraft
	}

	schema, ok := r.Lookup(doc.SchemaName)
	if !ok {
		schema = &Schema{Name: doc.SchemaName, Kind: KindGeneric}
	}
	return schema.Status(doc)
}

// DefaultRegistry returns a registry populated with the built-in schemas
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, s := range []Schema{
		{Name: SchemaSalesInvoice, Kind: KindInvoice, Direction: DirectionOutbound, Submittable: true},
		{Name: SchemaPurchaseInvoice, Kind: KindInvoice, Direction: DirectionInbound, Submittable: true},
		{Name: SchemaPayment, Kind: KindGeneric, Submittable: true},
		{Name: SchemaJournalEntry, Kind: KindGeneric, Submittable: true},
		{Name: SchemaShipment, Kind: KindGeneric, Direction: DirectionOutbound, Submittable: true},
		{Name: SchemaPurchaseReceipt, Kind: KindGeneric, Direction: DirectionInbound, Submittable: true},
		{Name: SchemaStockMovement, Kind: KindGeneric, Submittable: true},
		{Name: SchemaItem, Kind: KindGeneric},
		{Name: SchemaParty, Kind: KindGeneric},
	} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}

	return r
}
