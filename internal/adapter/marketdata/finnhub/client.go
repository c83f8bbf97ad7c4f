package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"github.com/smartinvest/backend/internal/domain"
)

// DefaultBaseURL is the production Finnhub API endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// maxSearchResults caps symbol search responses.
const maxSearchResults = 7

// Client is a Finnhub-backed implementation of domain.QuoteSource.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a new Finnhub client. baseURL may be empty to use
// the production endpoint; tests point it at a local server.
func NewClient(apiKey, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// quoteResponse matches Finnhub's /quote payload. Only the current
// price and previous close matter here.
type quoteResponse struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

// Quote fetches the live quote for one symbol.
// A quote with both prices at zero means Finnhub has no data for the
// symbol and is treated as a failure, not a free stock.
func (c *Client) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	var payload quoteResponse
	params := url.Values{"symbol": {symbol}, "token": {c.apiKey}}
	if err := c.getJSON(ctx, "/quote", params, &payload); err != nil {
		return domain.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if payload.Current == 0 && payload.PreviousClose == 0 {
		return domain.Quote{}, fmt.Errorf("no quote data for %s", symbol)
	}

	return domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  decimal.NewFromFloat(payload.Current),
		PreviousClose: decimal.NewFromFloat(payload.PreviousClose),
	}, nil
}

// searchResponse matches Finnhub's /search payload.
type searchResponse struct {
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
	} `json:"result"`
}

// Search finds symbols matching a text fragment. Listings whose symbol
// contains a dot (non-primary US listings) are filtered out and at most
// seven results are returned.
func (c *Client) Search(ctx context.Context, fragment string) ([]domain.SymbolMatch, error) {
	if fragment == "" {
		return nil, nil
	}

	var payload searchResponse
	params := url.Values{"q": {fragment}, "token": {c.apiKey}}
	if err := c.getJSON(ctx, "/search", params, &payload); err != nil {
		return nil, fmt.Errorf("failed to search symbols for %q: %w", fragment, err)
	}

	matches := make([]domain.SymbolMatch, 0, maxSearchResults)
	for _, item := range payload.Result {
		if strings.Contains(item.Symbol, ".") {
			continue
		}
		matches = append(matches, domain.SymbolMatch{
			Symbol:      item.Symbol,
			Description: item.Description,
		})
		if len(matches) == maxSearchResults {
			break
		}
	}
	return matches, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("finnhub request failed")
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: rate limited", domain.ErrQuoteSourceOutage)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
