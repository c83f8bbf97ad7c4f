package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartinvest/backend/internal/domain"
)

// dustThreshold is the residual share quantity below which a position
// is considered fully closed. Quantities are exact decimals here, but
// resolved quantities inherit sub-cent fractions from cash-to-share
// conversion, so a sell of "everything" can leave a hair of a share.
var dustThreshold = decimal.NewFromFloat(1e-6)

// OrderInput describes an order already resolved to a share quantity.
type OrderInput struct {
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
}

// Service executes orders against the account store. Quantity
// resolution (ResolveQuantity) happens before this point; the service
// validates the executable order and mutates balance, holdings and
// ledger atomically through the repository.
type Service struct {
	AccountRepo domain.AccountRepository
}

// NewService creates a new trade Service instance.
func NewService(accountRepo domain.AccountRepository) *Service {
	return &Service{AccountRepo: accountRepo}
}

// Buy executes a purchase:
//  1. The total cost (price*quantity + commission) must be covered by
//     the cash balance.
//  2. The holding is aggregated: total cost grows by the trade value
//     and the average price is re-derived from total cost / quantity.
//  3. Balance, holdings and the Buy event are written atomically.
func (s *Service) Buy(ctx context.Context, userID uuid.UUID, order OrderInput) (*domain.Account, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	account, err := s.AccountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tradeValue := order.Price.Mul(order.Quantity)
	totalCost := tradeValue.Add(order.Commission)
	if account.Snapshot.Balance.LessThan(totalCost) {
		return nil, domain.NewInvalidTradeInput("insufficient funds")
	}

	snapshot := account.Snapshot
	snapshot.Balance = snapshot.Balance.Sub(totalCost)
	snapshot.Holdings = addToHolding(snapshot.Holdings, order.Symbol, order.Quantity, tradeValue)

	event := domain.Buy{
		Symbol:     order.Symbol,
		Quantity:   order.Quantity,
		Price:      order.Price,
		Commission: order.Commission,
		Date:       time.Now().UTC(),
	}
	if err := s.AccountRepo.ApplyEvent(ctx, userID, snapshot, event); err != nil {
		return nil, fmt.Errorf("failed to apply buy: %w", err)
	}

	snapshot.Transactions = append(snapshot.Transactions, event)
	account.Snapshot = snapshot
	return account, nil
}

// Sell executes a sale:
//  1. The position must hold at least the requested quantity and the
//     commission must not exceed the sale value.
//  2. The cost basis is reduced at the average price before the
//     quantity shrinks; a residual below the dust threshold closes the
//     position entirely.
//  3. Balance, holdings and the Sell event are written atomically.
func (s *Service) Sell(ctx context.Context, userID uuid.UUID, order OrderInput) (*domain.Account, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	account, err := s.AccountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := account.Snapshot
	idx := findHolding(snapshot.Holdings, order.Symbol)
	if idx < 0 || snapshot.Holdings[idx].Quantity.LessThan(order.Quantity) {
		return nil, domain.NewInvalidTradeInput("insufficient stock quantity to sell")
	}

	proceeds := order.Price.Mul(order.Quantity).Sub(order.Commission)
	if proceeds.IsNegative() {
		return nil, domain.NewInvalidTradeInput("commission cannot exceed sale value")
	}

	holdings := make([]domain.Holding, len(snapshot.Holdings))
	copy(holdings, snapshot.Holdings)

	h := holdings[idx]
	h.TotalCost = h.TotalCost.Sub(h.AvgPrice.Mul(order.Quantity))
	h.Quantity = h.Quantity.Sub(order.Quantity)
	if h.Quantity.LessThan(dustThreshold) {
		holdings = append(holdings[:idx], holdings[idx+1:]...)
	} else {
		holdings[idx] = h
	}

	snapshot.Balance = snapshot.Balance.Add(proceeds)
	snapshot.Holdings = holdings

	event := domain.Sell{
		Symbol:     order.Symbol,
		Quantity:   order.Quantity,
		Price:      order.Price,
		Commission: order.Commission,
		Date:       time.Now().UTC(),
	}
	if err := s.AccountRepo.ApplyEvent(ctx, userID, snapshot, event); err != nil {
		return nil, fmt.Errorf("failed to apply sell: %w", err)
	}

	snapshot.Transactions = append(snapshot.Transactions, event)
	account.Snapshot = snapshot
	return account, nil
}

// Deposit adds external cash to the account and records the event.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewInvalidTradeInput("deposit amount must be positive")
	}

	account, err := s.AccountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := account.Snapshot
	snapshot.Balance = snapshot.Balance.Add(amount)

	event := domain.Deposit{
		Amount:      amount,
		Date:        time.Now().UTC(),
		Description: "User deposit",
	}
	if err := s.AccountRepo.ApplyEvent(ctx, userID, snapshot, event); err != nil {
		return nil, fmt.Errorf("failed to apply deposit: %w", err)
	}

	snapshot.Transactions = append(snapshot.Transactions, event)
	account.Snapshot = snapshot
	return account, nil
}

func validateOrder(order OrderInput) error {
	if order.Symbol == "" {
		return domain.NewInvalidTradeInput("symbol cannot be empty")
	}
	if order.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.NewInvalidTradeInput("quantity must be positive")
	}
	if order.Price.LessThanOrEqual(decimal.Zero) {
		return domain.NewInvalidTradeInput("price must be positive")
	}
	if order.Commission.IsNegative() {
		return domain.NewInvalidTradeInput("commission cannot be negative")
	}
	return nil
}

// addToHolding merges a purchase into the holdings list, creating the
// position when it does not exist yet. Average price is always derived
// from total cost so repeated buys cannot drift.
func addToHolding(holdings []domain.Holding, symbol string, quantity, tradeValue decimal.Decimal) []domain.Holding {
	merged := make([]domain.Holding, len(holdings))
	copy(merged, holdings)

	if idx := findHolding(merged, symbol); idx >= 0 {
		h := merged[idx]
		h.Quantity = h.Quantity.Add(quantity)
		h.TotalCost = h.TotalCost.Add(tradeValue)
		h.AvgPrice = h.TotalCost.Div(h.Quantity)
		merged[idx] = h
		return merged
	}

	return append(merged, domain.Holding{
		Symbol:    symbol,
		Quantity:  quantity,
		AvgPrice:  tradeValue.Div(quantity),
		TotalCost: tradeValue,
	})
}

func findHolding(holdings []domain.Holding, symbol string) int {
	for i := range holdings {
		if holdings[i].Symbol == symbol {
			return i
		}
	}
	return -1
}
