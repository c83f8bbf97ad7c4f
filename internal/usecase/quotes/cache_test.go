package quotes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/backend/internal/domain"
)

// stubSource is a controllable QuoteSource that counts upstream calls.
type stubSource struct {
	mu      sync.Mutex
	calls   int
	failAll bool
	fail    map[string]bool
	prices  map[string]int64
	delay   time.Duration
}

func (s *stubSource) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	s.mu.Lock()
	s.calls++
	failAll, failSym := s.failAll, s.fail[symbol]
	price := s.prices[symbol]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failAll || failSym {
		return domain.Quote{}, errors.New("upstream unavailable")
	}
	return domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  decimal.NewFromInt(price),
		PreviousClose: decimal.NewFromInt(price),
	}, nil
}

func (s *stubSource) Search(ctx context.Context, fragment string) ([]domain.SymbolMatch, error) {
	return nil, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestGetQuotes_FreshEntryServedFromCache(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{prices: map[string]int64{"AAPL": 190, "MSFT": 410}}
	cache := NewCache(source, time.Minute)

	first, err := cache.GetQuotes(ctx, "universe", []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.False(t, first.Stale)
	assert.Equal(t, 2, source.callCount())

	second, err := cache.GetQuotes(ctx, "universe", []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount(), "fresh entry must not contact the source")
	assert.True(t, second.Quotes["AAPL"].CurrentPrice.Equal(decimal.NewFromInt(190)))
}

func TestGetQuotes_PartialFailure(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{
		prices: map[string]int64{"AAPL": 190},
		fail:   map[string]bool{"DEAD": true},
	}
	cache := NewCache(source, time.Minute)

	set, err := cache.GetQuotes(ctx, "universe", []string{"AAPL", "DEAD"})

	require.NoError(t, err)
	assert.False(t, set.Stale)
	require.Len(t, set.Quotes, 2, "batch always answers for every requested symbol")
	assert.False(t, set.Quotes["AAPL"].Unavailable())
	assert.True(t, set.Quotes["DEAD"].Unavailable())
	assert.ErrorIs(t, set.Quotes["DEAD"].Err, domain.ErrQuoteUnavailable)
}

func TestGetQuotes_OutageFallsBackToStalePayload(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{prices: map[string]int64{"AAPL": 190}}
	cache := NewCache(source, 10*time.Millisecond)

	first, err := cache.GetQuotes(ctx, "universe", []string{"AAPL"})
	require.NoError(t, err)
	require.False(t, first.Stale)

	// Window expires, then the upstream goes down.
	time.Sleep(20 * time.Millisecond)
	source.mu.Lock()
	source.failAll = true
	source.mu.Unlock()

	set, err := cache.GetQuotes(ctx, "universe", []string{"AAPL"})

	require.NoError(t, err, "outage with a previous payload must not surface an error")
	assert.True(t, set.Stale)
	assert.True(t, set.Quotes["AAPL"].CurrentPrice.Equal(decimal.NewFromInt(190)), "previous payload is served")
}

func TestGetQuotes_OutageWithoutPreviousPayload(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{failAll: true}
	cache := NewCache(source, time.Minute)

	set, err := cache.GetQuotes(ctx, "universe", []string{"AAPL", "MSFT"})

	require.NoError(t, err)
	assert.False(t, set.Stale)
	assert.True(t, set.Quotes["AAPL"].Unavailable())
	assert.True(t, set.Quotes["MSFT"].Unavailable())
}

func TestGetQuotes_ConcurrentCallersShareOneRefresh(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{
		prices: map[string]int64{"AAPL": 190},
		delay:  30 * time.Millisecond,
	}
	cache := NewCache(source, time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.QuoteSet, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := cache.GetQuotes(ctx, "universe", []string{"AAPL"})
			assert.NoError(t, err)
			results[i] = set
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, source.callCount(), "concurrent callers must share a single in-flight refresh")
	for _, set := range results {
		assert.True(t, set.Quotes["AAPL"].CurrentPrice.Equal(decimal.NewFromInt(190)))
	}
}

func TestGetQuotes_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{prices: map[string]int64{"AAPL": 190, "TSLA": 250}}
	cache := NewCache(source, time.Minute)

	_, err := cache.GetQuotes(ctx, "leaderboard", []string{"AAPL"})
	require.NoError(t, err)
	_, err = cache.GetQuotes(ctx, "movers", []string{"TSLA"})
	require.NoError(t, err)

	assert.Equal(t, 2, source.callCount(), "distinct purpose keys keep distinct snapshots")
}
