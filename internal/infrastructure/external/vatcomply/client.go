// Package vatcomply is an HTTP client for the exchange-rate service the
// resolver falls back to on cache misses.
package vatcomply

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultEndpoint is the public rates endpoint
const DefaultEndpoint = "https://api.vatcomply.com/rates"

// Config holds client configuration
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client fetches exchange rates over HTTP. One request per call; timeouts
// come from the underlying http.Client.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// ratesResponse mirrors the service's wire format
type ratesResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// NewClient creates a rate service client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Rates returns the rate mapping for the base currency as of date
func (c *Client) Rates(ctx context.Context, base, date string) (map[string]decimal.Decimal, error) {
	query := url.Values{}
	query.Set("base", base)
	if date != "" {
		query.Set("date", date)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	if body.Rates == nil {
		return nil, fmt.Errorf("rates response missing rates mapping")
	}

	c.logger.Debug("Fetched exchange rates",
		zap.String("base", base),
		zap.String("date", date),
		zap.Int("count", len(body.Rates)))

	return body.Rates, nil
}
