package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time market price for one symbol.
// When the quote source failed for this symbol, Err is non-nil and the
// price fields are zero; callers degrade to a fallback price instead of
// failing the whole computation.
type Quote struct {
	Symbol        string
	CurrentPrice  decimal.Decimal
	PreviousClose decimal.Decimal
	Err           error
}

// Unavailable reports whether this quote carries an error marker
// instead of prices.
func (q Quote) Unavailable() bool {
	return q.Err != nil
}

// DailyChangePercent returns the percentage move from the previous
// close, or false when it cannot be computed (unavailable quote or a
// zero previous close).
func (q Quote) DailyChangePercent() (decimal.Decimal, bool) {
	if q.Unavailable() || q.PreviousClose.IsZero() {
		return decimal.Zero, false
	}
	change := q.CurrentPrice.Sub(q.PreviousClose).Div(q.PreviousClose).Mul(decimal.NewFromInt(100))
	return change, true
}

// QuoteSet is the result of a batch quote lookup. It always contains an
// entry for every requested symbol, either fresh prices or an error
// marker. Stale is set when the payload was served from an expired
// cache entry because the refresh attempt failed entirely.
type QuoteSet struct {
	Quotes    map[string]Quote
	FetchedAt time.Time
	Stale     bool
}

// Resolve returns the quote for symbol, or an unavailable marker when
// the set has no entry for it.
func (s QuoteSet) Resolve(symbol string) Quote {
	if q, ok := s.Quotes[symbol]; ok {
		return q
	}
	return Quote{Symbol: symbol, Err: ErrQuoteUnavailable}
}

// SymbolMatch is a single symbol search result.
type SymbolMatch struct {
	Symbol      string
	Description string
}
