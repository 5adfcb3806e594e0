// Command tradeogre watches a TradeOgre market and, when credentials are
// present, the account attached to them. It can be configured via a YAML
// configuration file or command-line arguments.
//
// Usage:
//
//	tradeogre --config config.yaml
//	tradeogre --pair BTC-XMR --refreshinterval 30s
//
// Optional environment variables:
//
//	TRADEOGRE_PUBLIC_KEY, TRADEOGRE_PRIVATE_KEY  log in at startup
//	TRADEOGRE_STORE_PASSPHRASE                   encrypt the credential store
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeogre/config"
	"github.com/vadiminshakov/tradeogre/internal/domain"
	"github.com/vadiminshakov/tradeogre/internal/exchange"
	"github.com/vadiminshakov/tradeogre/internal/refresh"
	"github.com/vadiminshakov/tradeogre/internal/secretstore"
	"github.com/vadiminshakov/tradeogre/internal/session"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, err := secretstore.OpenBadger(cfg.SecretsDir, os.Getenv(cfg.PassphraseEnv))
	if err != nil {
		logger.Fatal("failed to open credential store", zap.Error(err))
	}
	defer store.Close()

	api := exchange.New(cfg.BaseURL, logger)
	manager := session.NewManager(api, store, logger)

	loginFromEnv(manager, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	status := manager.SubscribeLoginStatus()
	defer manager.UnsubscribeLoginStatus(status)
	go func() {
		for loggedIn := range status {
			logger.Info("login status changed", zap.Bool("logged_in", loggedIn))
		}
	}()

	overview := refresh.New("overview", cfg.RefreshInterval,
		func(ctx context.Context) ([]domain.ExchangeMarket, error) {
			return manager.MarketsOverview(ctx)
		},
		func(groups []domain.ExchangeMarket) {
			total := 0
			for _, g := range groups {
				total += len(g.Markets)
			}
			logger.Info("markets refreshed", zap.Int("bases", len(groups)), zap.Int("markets", total))
		}, logger)
	overview.Activate()
	defer overview.Stop()

	market := refresh.New("market", cfg.RefreshInterval,
		func(ctx context.Context) (domain.MarketDetails, error) {
			return manager.MarketDetails(ctx, cfg.Pair)
		},
		func(details domain.MarketDetails) {
			logger.Info("market refreshed",
				zap.String("pair", cfg.Pair.String()),
				zap.Float64("price", details.Market.Data.Price),
				zap.Float64("delta_percent", details.Market.Data.PriceDeltaPercent()),
				zap.Int("trades", len(details.History)),
				zap.Int("buys", len(details.Buys)),
				zap.Int("sells", len(details.Sells)))
		}, logger)
	market.Activate()
	defer market.Stop()

	balances := refresh.New("balances", cfg.RefreshInterval,
		func(ctx context.Context) ([]domain.Balance, error) {
			return manager.AllBalances(ctx)
		},
		func(all []domain.Balance) {
			for _, b := range domain.Displayable(all) {
				logger.Info("balance", zap.String("currency", b.Currency), zap.Float64("amount", b.Balance))
			}
		}, logger)
	balanceStatus := manager.SubscribeLoginStatus()
	defer manager.UnsubscribeLoginStatus(balanceStatus)
	defer balances.Stop()
	go balances.Follow(ctx, balanceStatus)
	if manager.IsLoggedIn() {
		balances.Activate()
	}

	logger.Info("watching market", zap.String("pair", cfg.Pair.String()), zap.Duration("interval", cfg.RefreshInterval))
	<-ctx.Done()
	logger.Info("shutting down")
}

// loginFromEnv logs the session in from environment credentials when both
// keys are present and well-formed. A restored session is left alone.
func loginFromEnv(manager *session.Manager, logger *zap.Logger) {
	public := os.Getenv("TRADEOGRE_PUBLIC_KEY")
	private := os.Getenv("TRADEOGRE_PRIVATE_KEY")
	if public == "" || private == "" {
		return
	}
	if manager.IsLoggedIn() {
		return
	}
	keys := domain.APIKeys{Public: public, Private: private}
	if !keys.Valid() {
		logger.Warn("ignoring malformed API keys from environment")
		return
	}
	if err := manager.Login(public, private); err != nil {
		logger.Warn("login failed", zap.Error(err))
	}
}
