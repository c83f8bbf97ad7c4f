package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/backend/internal/domain"
)

func TestResolveQuantity_Buy(t *testing.T) {
	// 1000 cash, 5 commission: 995 buys shares at 100 each.
	quantity, err := ResolveQuantity(SideBuy,
		decimal.NewFromInt(1000), decimal.NewFromInt(100), decimal.NewFromInt(5))

	require.NoError(t, err)
	assert.True(t, quantity.Equal(decimal.NewFromFloat(9.95)), "expected 9.95, got %s", quantity)
}

func TestResolveQuantity_Sell(t *testing.T) {
	// User wants 1000 net; gross proceeds must also cover the 5
	// commission, so 1005 worth of shares are sold.
	quantity, err := ResolveQuantity(SideSell,
		decimal.NewFromInt(1000), decimal.NewFromInt(100), decimal.NewFromInt(5))

	require.NoError(t, err)
	assert.True(t, quantity.Equal(decimal.NewFromFloat(10.05)), "expected 10.05, got %s", quantity)
}

func TestResolveQuantity_ZeroCommission(t *testing.T) {
	buyQty, err := ResolveQuantity(SideBuy,
		decimal.NewFromInt(500), decimal.NewFromInt(50), decimal.Zero)
	require.NoError(t, err)

	sellQty, err := ResolveQuantity(SideSell,
		decimal.NewFromInt(500), decimal.NewFromInt(50), decimal.Zero)
	require.NoError(t, err)

	// With no commission the asymmetry disappears.
	assert.True(t, buyQty.Equal(sellQty))
	assert.True(t, buyQty.Equal(decimal.NewFromInt(10)))
}

func TestResolveQuantity_CommissionExceedsAmount(t *testing.T) {
	_, err := ResolveQuantity(SideBuy,
		decimal.NewFromInt(5), decimal.NewFromInt(100), decimal.NewFromInt(10))

	require.Error(t, err)
	assert.True(t, domain.IsInvalidTradeInput(err))
	assert.Contains(t, err.Error(), "amount must exceed commission")
}

func TestResolveQuantity_InvalidInputs(t *testing.T) {
	cases := []struct {
		name       string
		side       Side
		amount     decimal.Decimal
		price      decimal.Decimal
		commission decimal.Decimal
	}{
		{"zero amount", SideBuy, decimal.Zero, decimal.NewFromInt(100), decimal.Zero},
		{"negative amount", SideSell, decimal.NewFromInt(-10), decimal.NewFromInt(100), decimal.Zero},
		{"zero price", SideBuy, decimal.NewFromInt(100), decimal.Zero, decimal.Zero},
		{"negative price", SideSell, decimal.NewFromInt(100), decimal.NewFromInt(-1), decimal.Zero},
		{"negative commission", SideBuy, decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(-1)},
		{"unknown side", Side("short"), decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.Zero},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveQuantity(tc.side, tc.amount, tc.price, tc.commission)
			require.Error(t, err)
			assert.True(t, domain.IsInvalidTradeInput(err), "expected InvalidTradeInputError, got %v", err)
		})
	}
}
