package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/smartinvest/backend/internal/domain"
	"github.com/smartinvest/backend/internal/usecase/leaderboard"
	"github.com/smartinvest/backend/internal/usecase/movers"
	"github.com/smartinvest/backend/internal/usecase/profile"
	"github.com/smartinvest/backend/internal/usecase/trade"
)

// Server glues the use case layer to a REST surface.
type Server struct {
	router      *gin.Engine
	profiles    *profile.Service
	trades      *trade.Service
	leaderboard *leaderboard.Service
	movers      *movers.Service
	quotes      domain.QuoteSource
	logger      *log.Logger
}

func NewServer(
	profiles *profile.Service,
	trades *trade.Service,
	lb *leaderboard.Service,
	mv *movers.Service,
	quotes domain.QuoteSource,
	logger *log.Logger,
) *Server {
	s := &Server{
		profiles:    profiles,
		trades:      trades,
		leaderboard: lb,
		movers:      mv,
		quotes:      quotes,
		logger:      logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(router)
	s.router = router
	return s
}

// Handler exposes the router for net/http servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/users/top", s.getTopUsers)
	api.GET("/users/:id", s.getPublicProfile)

	api.GET("/accounts/:id", s.getProfile)
	api.POST("/accounts/:id/buy", s.postBuy)
	api.POST("/accounts/:id/sell", s.postSell)
	api.POST("/accounts/:id/deposit", s.postDeposit)

	api.GET("/stocks/hot", s.getHotStocks)
	api.GET("/stocks/search", s.searchSymbols)
	api.GET("/stocks/:symbol/quote", s.getQuote)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
