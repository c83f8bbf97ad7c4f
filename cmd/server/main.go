package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"

	httpadapter "github.com/smartinvest/backend/internal/adapter/http"
	"github.com/smartinvest/backend/internal/adapter/marketdata/finnhub"
	"github.com/smartinvest/backend/internal/adapter/repository/postgres"
	"github.com/smartinvest/backend/internal/config"
	"github.com/smartinvest/backend/internal/usecase/leaderboard"
	"github.com/smartinvest/backend/internal/usecase/movers"
	"github.com/smartinvest/backend/internal/usecase/profile"
	"github.com/smartinvest/backend/internal/usecase/quotes"
	"github.com/smartinvest/backend/internal/usecase/trade"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := &log.Logger{
		Level:      log.ParseLevel(cfg.Logging.Level),
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{Writer: os.Stderr},
	}

	if cfg.MarketData.APIKey == "" {
		logger.Warn().Msg("no market data API key configured, quote requests will be rejected upstream")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := postgres.NewDB(cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	accountRepo := postgres.NewAccountRepository(db)
	quoteSource := finnhub.NewClient(cfg.MarketData.APIKey, cfg.MarketData.BaseURL, logger)
	quoteCache := quotes.NewCache(quoteSource, cfg.MarketData.CacheTTL())

	profileService := profile.NewService(accountRepo, quoteSource)
	tradeService := trade.NewService(accountRepo)
	leaderboardService := leaderboard.NewService(accountRepo, quoteCache)
	moversService := movers.NewService(quoteCache)

	server := httpadapter.NewServer(
		profileService,
		tradeService,
		leaderboardService,
		moversService,
		quoteSource,
		logger,
	)

	addr := cfg.Server.Addr()
	logger.Info().Str("addr", addr).Msg("starting HTTP server")
	if err := server.Run(ctx, addr); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
