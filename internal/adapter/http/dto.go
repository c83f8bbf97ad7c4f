package http

import (
	"github.com/smartinvest/backend/internal/domain"
	"github.com/smartinvest/backend/internal/usecase/leaderboard"
	"github.com/smartinvest/backend/internal/usecase/movers"
	"github.com/smartinvest/backend/internal/usecase/profile"
)

// Money travels as strings on the wire; decimals never pass through
// float64 JSON numbers.

type tradeRequest struct {
	Symbol     string `json:"symbol" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	Price      string `json:"price" binding:"required"`
	Commission string `json:"commission"`
}

type depositRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type positionResponse struct {
	Symbol       string `json:"symbol"`
	Quantity     string `json:"quantity"`
	AvgPrice     string `json:"avg_price"`
	TotalCost    string `json:"total_cost"`
	CurrentPrice string `json:"current_price"`
	CurrentValue string `json:"current_value"`
	UnrealizedPL string `json:"unrealized_pl"`
}

type valuationResponse struct {
	Balance             string             `json:"balance"`
	TotalPortfolioValue string             `json:"total_portfolio_value"`
	InvestedAmount      string             `json:"invested_amount"`
	TotalEquity         string             `json:"total_equity"`
	NetContributions    string             `json:"net_contributions"`
	TotalCommissions    string             `json:"total_commissions"`
	UnrealizedPL        string             `json:"unrealized_pl"`
	RealizedPL          string             `json:"realized_pl"`
	OverallPL           string             `json:"overall_pl"`
	OverallPLPercentage string             `json:"overall_pl_percentage"`
	Portfolio           []positionResponse `json:"portfolio"`
}

type profileResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
	valuationResponse
}

type tradeResponse struct {
	Message    string `json:"message"`
	Quantity   string `json:"quantity"`
	NewBalance string `json:"new_balance"`
}

type topUserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	valuationResponse
}

type topUsersResponse struct {
	Stale bool              `json:"stale"`
	Users []topUserResponse `json:"users"`
}

type moverResponse struct {
	Symbol             string `json:"symbol"`
	CurrentPrice       string `json:"current_price"`
	DailyChangePercent string `json:"daily_change_percent"`
}

type hotStocksResponse struct {
	Stale  bool            `json:"stale"`
	Stocks []moverResponse `json:"stocks"`
}

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	CurrentPrice  string `json:"current_price"`
	PreviousClose string `json:"previous_close"`
}

type symbolMatchResponse struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

func toValuationResponse(v domain.ValuationResult) valuationResponse {
	portfolio := make([]positionResponse, 0, len(v.Positions))
	for _, p := range v.Positions {
		portfolio = append(portfolio, positionResponse{
			Symbol:       p.Symbol,
			Quantity:     p.Quantity.String(),
			AvgPrice:     p.AvgPrice.String(),
			TotalCost:    p.TotalCost.String(),
			CurrentPrice: p.CurrentPrice.String(),
			CurrentValue: p.CurrentValue.String(),
			UnrealizedPL: p.UnrealizedPL.String(),
		})
	}
	return valuationResponse{
		Balance:             v.Balance.String(),
		TotalPortfolioValue: v.TotalPortfolioValue.String(),
		InvestedAmount:      v.InvestedAmount.String(),
		TotalEquity:         v.TotalEquity.String(),
		NetContributions:    v.NetContributions.String(),
		TotalCommissions:    v.TotalCommissions.String(),
		UnrealizedPL:        v.UnrealizedPL.String(),
		RealizedPL:          v.RealizedPL.String(),
		OverallPL:           v.OverallPL.String(),
		OverallPLPercentage: v.OverallPLPercentage.String(),
		Portfolio:           portfolio,
	}
}

func toProfileResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		ID:                p.UserID.String(),
		Name:              p.Name,
		IsPublic:          p.IsPublic,
		valuationResponse: toValuationResponse(p.Valuation),
	}
}

func toTopUsersResponse(entries []leaderboard.Entry, stale bool) topUsersResponse {
	users := make([]topUserResponse, 0, len(entries))
	for _, entry := range entries {
		users = append(users, topUserResponse{
			ID:                entry.UserID,
			Name:              entry.Name,
			valuationResponse: toValuationResponse(entry.Valuation),
		})
	}
	return topUsersResponse{Stale: stale, Users: users}
}

func toHotStocksResponse(gainers []movers.Mover, stale bool) hotStocksResponse {
	stocks := make([]moverResponse, 0, len(gainers))
	for _, m := range gainers {
		stocks = append(stocks, moverResponse{
			Symbol:             m.Symbol,
			CurrentPrice:       m.CurrentPrice.String(),
			DailyChangePercent: m.DailyChangePercent.String(),
		})
	}
	return hotStocksResponse{Stale: stale, Stocks: stocks}
}
