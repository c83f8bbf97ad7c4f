package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinvest/backend/internal/domain"
	"github.com/smartinvest/backend/internal/usecase/leaderboard"
	"github.com/smartinvest/backend/internal/usecase/trade"
)

const defaultTopUsersLimit = 3

func (s *Server) getTopUsers(c *gin.Context) {
	limit := defaultTopUsersLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	sortKey := leaderboard.SortByOverallPL
	if c.Query("sortBy") == string(leaderboard.SortByOverallPLPercentage) {
		sortKey = leaderboard.SortByOverallPLPercentage
	}

	timeframe := leaderboard.TimeframeAll
	switch leaderboard.Timeframe(c.Query("timeframe")) {
	case leaderboard.Timeframe24H:
		timeframe = leaderboard.Timeframe24H
	case leaderboard.Timeframe1M:
		timeframe = leaderboard.Timeframe1M
	}

	entries, stale, err := s.leaderboard.TopUsers(c.Request.Context(), timeframe, sortKey, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTopUsersResponse(entries, stale))
}

func (s *Server) getPublicProfile(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	p, err := s.profiles.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p))
}

func (s *Server) getProfile(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	p, err := s.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p))
}

func (s *Server) postBuy(c *gin.Context) {
	s.executeTrade(c, trade.SideBuy)
}

func (s *Server) postSell(c *gin.Context) {
	s.executeTrade(c, trade.SideSell)
}

func (s *Server) executeTrade(c *gin.Context, side trade.Side) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}
	commission := decimal.Zero
	if req.Commission != "" {
		commission, err = decimal.NewFromString(req.Commission)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commission"})
			return
		}
	}

	quantity, err := trade.ResolveQuantity(side, amount, price, commission)
	if err != nil {
		s.respondError(c, err)
		return
	}

	order := trade.OrderInput{
		Symbol:     strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Quantity:   quantity,
		Price:      price,
		Commission: commission,
	}

	var account *domain.Account
	var message string
	switch side {
	case trade.SideBuy:
		account, err = s.trades.Buy(c.Request.Context(), userID, order)
		message = "purchase executed"
	default:
		account, err = s.trades.Sell(c.Request.Context(), userID, order)
		message = "sale executed"
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tradeResponse{
		Message:    message,
		Quantity:   quantity.String(),
		NewBalance: account.Snapshot.Balance.String(),
	})
}

func (s *Server) postDeposit(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	account, err := s.trades.Deposit(c.Request.Context(), userID, amount)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "deposit completed",
		"new_balance": account.Snapshot.Balance.String(),
	})
}

func (s *Server) getHotStocks(c *gin.Context) {
	gainers, stale, err := s.movers.TopGainers(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHotStocksResponse(gainers, stale))
}

func (s *Server) searchSymbols(c *gin.Context) {
	fragment := strings.TrimSpace(c.Query("q"))
	matches, err := s.quotes.Search(c.Request.Context(), fragment)
	if err != nil {
		s.respondError(c, err)
		return
	}
	results := make([]symbolMatchResponse, 0, len(matches))
	for _, m := range matches {
		results = append(results, symbolMatchResponse{Symbol: m.Symbol, Description: m.Description})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) getQuote(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	quote, err := s.quotes.Quote(c.Request.Context(), symbol)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{
		Symbol:        quote.Symbol,
		CurrentPrice:  quote.CurrentPrice.String(),
		PreviousClose: quote.PreviousClose.String(),
	})
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case domain.IsInvalidTradeInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	case errors.Is(err, domain.ErrQuoteUnavailable), errors.Is(err, domain.ErrQuoteSourceOutage):
		c.JSON(http.StatusBadGateway, gin.H{"error": "quote source unavailable"})
	default:
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
