// Package service contains the application services tying the domain to
// the persistence, navigation and remote-rate collaborators.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/port"
)

// rateCacheKeyPrefix namespaces exchange-rate entries in the shared
// key/value store.
const rateCacheKeyPrefix = "currencyExchangeRate"

// sentinelRate marks an unresolved rate. A stored 1 for a non-identical
// pair means "not cached yet / lookup failed", not a genuine 1:1 parity;
// callers distinguish the two only through this convention.
var sentinelRate = decimal.NewFromInt(1)

// ExchangeService resolves a (base, quote, date) exchange rate through a
// local persistent cache with a remote fallback. Resolution never fails:
// any error degrades to the sentinel rate of 1.
type ExchangeService struct {
	kv     port.KeyValueStore
	rates  port.RateProvider
	now    func() time.Time
	logger *zap.Logger
}

// ExchangeOption configures the service
type ExchangeOption func(*ExchangeService)

// WithClock overrides the clock used to default the lookup date
func WithClock(now func() time.Time) ExchangeOption {
	return func(s *ExchangeService) {
		s.now = now
	}
}

// NewExchangeService creates an exchange-rate resolver. A nil provider
// means offline mode: every resolution returns 1 without touching the
// cache or the network.
func NewExchangeService(kv port.KeyValueStore, rates port.RateProvider, logger *zap.Logger, opts ...ExchangeOption) *ExchangeService {
	s := &ExchangeService{
		kv:     kv,
		rates:  rates,
		now:    time.Now,
		logger: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Resolve returns the exchange rate from base to quote as of date
// (ISO calendar date; empty means today). At most one remote lookup is
// attempted per call, and whatever value is obtained, including the
// sentinel after a failure, is written back to the cache so the same day
// is not re-attempted.
func (s *ExchangeService) Resolve(ctx context.Context, base, quote, date string) decimal.Decimal {
	if s.rates == nil {
		return sentinelRate
	}

	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	key := rateCacheKey(date, base, quote)

	cached := s.cachedRate(ctx, key)
	if !cached.IsZero() && !cached.Equal(sentinelRate) {
		return cached
	}

	rate := s.fetchRate(ctx, base, quote, date)

	if err := s.kv.Set(ctx, key, rate.String()); err != nil {
		s.logger.Warn("Failed to cache exchange rate",
			zap.String("key", key),
			zap.Error(err))
	}

	return rate
}

// cachedRate reads and parses the cached value; malformed or absent
// entries resolve to zero.
func (s *ExchangeService) cachedRate(ctx context.Context, key string) decimal.Decimal {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Exchange rate cache read failed",
			zap.String("key", key),
			zap.Error(err))
		return decimal.Zero
	}
	if raw == "" {
		return decimal.Zero
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// fetchRate performs the single remote lookup, degrading to the sentinel
// on any failure or missing pair.
func (s *ExchangeService) fetchRate(ctx context.Context, base, quote, date string) decimal.Decimal {
	rates, err := s.rates.Rates(ctx, base, date)
	if err != nil {
		s.logger.Warn("Exchange rate lookup failed",
			zap.String("base", base),
			zap.String("quote", quote),
			zap.String("date", date),
			zap.Error(err))
		return sentinelRate
	}

	rate, ok := rates[quote]
	if !ok || rate.IsZero() {
		s.logger.Warn("Exchange rate missing from response",
			zap.String("base", base),
			zap.String("quote", quote),
			zap.String("date", date))
		return sentinelRate
	}

	return rate
}

// rateCacheKey builds the cache key for a (date, base, quote) triple
func rateCacheKey(date, base, quote string) string {
	return fmt.Sprintf("%s:%s:%s:%s", rateCacheKeyPrefix, date, base, quote)
}
