package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuickEditRequest asks the host shell to open its quick-edit surface for a
// payment whose continuation is already armed. HideFields lists fields the
// surface should pre-hide because context already implies them.
type QuickEditRequest struct {
	Payment    *ArmedPayment
	HideFields []string
}

// Navigator is the host navigation surface. Implementations perform
// client-side navigation; the core only produces targets.
type Navigator interface {
	// RouteTo navigates to a literal path such as /edit/Shipment/SHP-0001
	RouteTo(ctx context.Context, path string) error

	// Route navigates to a named route with parameters
	Route(ctx context.Context, name string, params map[string]string) error

	// QuickEdit opens the quick-edit surface for an armed payment
	QuickEdit(ctx context.Context, req QuickEditRequest) error
}

// KeyValueStore is a machine-local persistent string cache
type KeyValueStore interface {
	// Get returns the value under key, or "" when absent
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, overwriting any previous value
	Set(ctx context.Context, key, value string) error
}

// RateProvider looks up exchange rates from a remote service
type RateProvider interface {
	// Rates returns the rate mapping for the base currency as of date
	// (ISO calendar date). Keys are quote currency codes.
	Rates(ctx context.Context, base, date string) (map[string]decimal.Decimal, error)
}
