package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/backend/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListPublic(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyEvent(ctx context.Context, userID uuid.UUID, snapshot domain.AccountSnapshot, tx domain.Transaction) error {
	args := m.Called(ctx, userID, snapshot, tx)
	return args.Error(0)
}

// MockQuoteSource is a mock implementation of QuoteSource for testing
type MockQuoteSource struct {
	mock.Mock
}

func (m *MockQuoteSource) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func (m *MockQuoteSource) Search(ctx context.Context, fragment string) ([]domain.SymbolMatch, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SymbolMatch), args.Error(1)
}

func liveQuote(symbol string, price int64) domain.Quote {
	return domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  decimal.NewFromInt(price),
		PreviousClose: decimal.NewFromInt(price),
	}
}

func TestGetProfile_ValuesHoldingsAtLivePrices(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockSource := new(MockQuoteSource)
	service := NewService(mockRepo, mockSource)

	userID := uuid.New()
	account := &domain.Account{
		UserID: userID,
		Name:   "alice",
		Snapshot: domain.AccountSnapshot{
			Balance: decimal.NewFromInt(500),
			Holdings: []domain.Holding{
				{Symbol: "AAPL", Quantity: decimal.NewFromInt(10), AvgPrice: decimal.NewFromInt(100), TotalCost: decimal.NewFromInt(1000)},
			},
			Transactions: []domain.Transaction{
				domain.Deposit{Amount: decimal.NewFromInt(1500)},
			},
		},
	}
	mockRepo.On("GetByUserID", ctx, userID).Return(account, nil)
	mockSource.On("Quote", mock.Anything, "AAPL").Return(liveQuote("AAPL", 150), nil)

	p, err := service.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.True(t, p.Valuation.TotalPortfolioValue.Equal(decimal.NewFromInt(1500)))
	assert.True(t, p.Valuation.TotalEquity.Equal(decimal.NewFromInt(2000)))
	assert.True(t, p.Valuation.OverallPL.Equal(decimal.NewFromInt(500)))
	// No dust: nothing was persisted.
	mockRepo.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProfile_SweepsDustHoldings(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockSource := new(MockQuoteSource)
	service := NewService(mockRepo, mockSource)

	userID := uuid.New()
	account := &domain.Account{
		UserID: userID,
		Name:   "bob",
		Snapshot: domain.AccountSnapshot{
			Balance: decimal.NewFromInt(100),
			Holdings: []domain.Holding{
				{Symbol: "AAPL", Quantity: decimal.NewFromInt(2), AvgPrice: decimal.NewFromInt(100), TotalCost: decimal.NewFromInt(200)},
				// 0.004 shares at 50 = 0.20, under the $1 threshold.
				{Symbol: "DUST", Quantity: decimal.NewFromFloat(0.004), AvgPrice: decimal.NewFromInt(40), TotalCost: decimal.NewFromFloat(0.16)},
			},
		},
	}
	mockRepo.On("GetByUserID", ctx, userID).Return(account, nil)
	mockSource.On("Quote", mock.Anything, "AAPL").Return(liveQuote("AAPL", 110), nil)
	mockSource.On("Quote", mock.Anything, "DUST").Return(liveQuote("DUST", 50), nil)

	var applied domain.AccountSnapshot
	var event domain.Transaction
	mockRepo.On("ApplyEvent", ctx, userID, mock.Anything, mock.AnythingOfType("domain.Liquidation")).
		Run(func(args mock.Arguments) {
			applied = args.Get(2).(domain.AccountSnapshot)
			event = args.Get(3).(domain.Transaction)
		}).
		Return(nil)

	p, err := service.GetProfile(ctx, userID)

	require.NoError(t, err)
	require.Len(t, applied.Holdings, 1, "dust holding should be removed")
	assert.Equal(t, "AAPL", applied.Holdings[0].Symbol)
	// Balance credited with the dust value: 100 + 0.004*50 = 100.20.
	assert.True(t, applied.Balance.Equal(decimal.NewFromFloat(100.20)))

	liq := event.(domain.Liquidation)
	assert.True(t, liq.Amount.Equal(decimal.NewFromFloat(0.20)))
	assert.Contains(t, liq.Description, "DUST")

	// The returned valuation reflects the swept account.
	require.Len(t, p.Valuation.Positions, 1)
	assert.True(t, p.Valuation.Balance.Equal(decimal.NewFromFloat(100.20)))
	mockRepo.AssertExpectations(t)
}

func TestGetProfile_QuoteFailureFallsBackToAvgPrice(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockSource := new(MockQuoteSource)
	service := NewService(mockRepo, mockSource)

	userID := uuid.New()
	account := &domain.Account{
		UserID: userID,
		Snapshot: domain.AccountSnapshot{
			Holdings: []domain.Holding{
				{Symbol: "AAPL", Quantity: decimal.NewFromInt(10), AvgPrice: decimal.NewFromInt(100), TotalCost: decimal.NewFromInt(1000)},
			},
		},
	}
	mockRepo.On("GetByUserID", ctx, userID).Return(account, nil)
	mockSource.On("Quote", mock.Anything, "AAPL").Return(domain.Quote{}, errors.New("rate limited"))

	p, err := service.GetProfile(ctx, userID)

	require.NoError(t, err, "a single failed quote must not fail the profile")
	assert.True(t, p.Valuation.TotalPortfolioValue.Equal(decimal.NewFromInt(1000)))
	require.Len(t, p.Valuation.Positions, 1)
	assert.True(t, p.Valuation.Positions[0].UnrealizedPL.IsZero())
}

func TestGetPublicProfile_PrivateAccountHidden(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockSource := new(MockQuoteSource)
	service := NewService(mockRepo, mockSource)

	userID := uuid.New()
	account := &domain.Account{UserID: userID, Name: "hermit", IsPublic: false}
	mockRepo.On("GetByUserID", ctx, userID).Return(account, nil)

	_, err := service.GetPublicProfile(ctx, userID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetPublicProfile_DoesNotSweepDust(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	mockSource := new(MockQuoteSource)
	service := NewService(mockRepo, mockSource)

	userID := uuid.New()
	account := &domain.Account{
		UserID:   userID,
		Name:     "carol",
		IsPublic: true,
		Snapshot: domain.AccountSnapshot{
			Holdings: []domain.Holding{
				{Symbol: "DUST", Quantity: decimal.NewFromFloat(0.001), AvgPrice: decimal.NewFromInt(10), TotalCost: decimal.NewFromFloat(0.01)},
			},
		},
	}
	mockRepo.On("GetByUserID", ctx, userID).Return(account, nil)
	mockSource.On("Quote", mock.Anything, "DUST").Return(liveQuote("DUST", 10), nil)

	_, err := service.GetPublicProfile(ctx, userID)

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
