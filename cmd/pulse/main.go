package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sportpulse/pulse/internal/api"
	"github.com/sportpulse/pulse/internal/auth"
	"github.com/sportpulse/pulse/internal/catalog"
	"github.com/sportpulse/pulse/internal/config"
	"github.com/sportpulse/pulse/internal/database"
	"github.com/sportpulse/pulse/internal/orderbook"
	"github.com/sportpulse/pulse/internal/pricing"
	"github.com/sportpulse/pulse/internal/server"
	"github.com/sportpulse/pulse/internal/store"
	"github.com/sportpulse/pulse/internal/trade"
	"github.com/sportpulse/pulse/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/pulse.example.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file expanded into the config")
	flag.Parse()

	// Secrets such as PULSE_DB_PASSWORD may come from a local dotenv file
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load env file", "path", *envPath, "error", err)
	}

	// Load configuration before the logger so the level can come from it
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "config", *configPath)
		os.Exit(1)
	}

	// Set up structured logging
	logger, closeLog := newLogger(cfg.Log)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting pulse",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"pricing_source", cfg.Pricing.Source,
		"store", cfg.Store.Backend,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Trade history
	tradeStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open trade store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Pricing
	pricer, err := newPricer(cfg, logger)
	if err != nil {
		logger.Error("failed to create pricer", "error", err)
		os.Exit(1)
	}
	quoter := pricing.NewQuoter(pricer, cfg.Pricing.FallbackRate, logger)

	generator := orderbook.NewGenerator(orderbook.Policy{
		Center:      cfg.Ladder.Center,
		Step:        cfg.Ladder.Step,
		Count:       cfg.Ladder.Count,
		Spread:      *cfg.Ladder.Spread,
		Jitter:      *cfg.Ladder.Jitter,
		MinPremium:  cfg.Pricing.MinPremium,
		MaxPremium:  cfg.Pricing.MaxPremium,
		Concurrency: cfg.Ladder.Concurrency,
	}, pricer)

	// Settlement
	settler, err := newSettler(cfg, logger)
	if err != nil {
		logger.Error("failed to create settlement client", "error", err)
		os.Exit(1)
	}

	events := catalog.FromConfig(cfg.Events)
	logger.Info("event catalog loaded",
		"events", len(events.Events()),
		"active", len(events.Active()),
	)

	trades := trade.NewService(trade.Config{
		CollateralRate: cfg.Trade.CollateralRate,
		QuoteTTL:       cfg.Trade.QuoteTTL,
	}, quoter, events, settler, tradeStore, logger)

	srv := server.New(server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.Port),
		RefreshInterval: cfg.Refresh.Interval,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, server.Deps{
		Ladder:  generator,
		Trades:  trades,
		Catalog: events,
		Store:   tradeStore,
	}, logger)

	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("pulse running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
		"stream_url", fmt.Sprintf("ws://localhost:%d/ws/orderbook", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}

	logger.Info("pulse stopped")
}

// openStore returns the configured trade store and a close function.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.TradeStore, func(), error) {
	if cfg.Store.Backend != "postgres" {
		mem := store.NewMemory(cfg.Store.Capacity)
		return mem, mem.Close, nil
	}

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}

	pg := store.NewPostgres(pool, logger)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("database connected")
	return pg, pool.Close, nil
}

// newPricer builds the local closed-form pricer or the oracle-backed one.
func newPricer(cfg *config.Config, logger *slog.Logger) (pricing.Pricer, error) {
	if cfg.Pricing.Source != "oracle" {
		return pricing.NewBlackScholes(pricing.Params{
			Reference:    cfg.Pricing.ReferenceValue,
			Volatility:   cfg.Pricing.Volatility,
			RiskFreeRate: cfg.Pricing.RiskFreeRate,
			TimeToExpiry: cfg.Pricing.TimeToExpiry,
			MinPremium:   cfg.Pricing.MinPremium,
			MaxPremium:   cfg.Pricing.MaxPremium,
		}), nil
	}

	client, err := newGatewayClient(cfg.Oracle, logger.With("gateway", "oracle"))
	if err != nil {
		return nil, err
	}
	return pricing.NewRemote(client), nil
}

// newSettler builds the settlement gateway adapter. Without a gateway URL
// every trade fails with a clear reason instead of the server refusing to start.
func newSettler(cfg *config.Config, logger *slog.Logger) (trade.Settler, error) {
	if cfg.Settlement.URL == "" {
		logger.Warn("settlement.url not set, trades will be rejected")
		return unconfiguredSettler{}, nil
	}

	client, err := newGatewayClient(cfg.Settlement, logger.With("gateway", "settlement"))
	if err != nil {
		return nil, err
	}
	return trade.NewGatewaySettler(client), nil
}

func newGatewayClient(gw config.GatewayConfig, logger *slog.Logger) (*api.Client, error) {
	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(gw.Timeout),
		api.WithRetries(gw.MaxRetries, gw.RetryBackoff),
		api.WithRateLimit(gw.RateLimit),
	}

	if gw.PrivateKeyPath != "" {
		creds, err := auth.LoadCredentials(gw.APIKey, gw.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load gateway credentials: %w", err)
		}
		opts = append(opts, api.WithSigner(creds))
		logger.Info("request signing enabled", "key_id", creds.KeyID)
	}

	return api.NewClient(gw.URL, gw.APIKey, opts...), nil
}

type unconfiguredSettler struct{}

func (unconfiguredSettler) Settle(ctx context.Context, order trade.Order) (string, error) {
	return "", errors.New("settlement gateway not configured")
}
