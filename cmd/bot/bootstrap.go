package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"auto-trader/internal/engine"
	"auto-trader/internal/engine/engineobs"
	"auto-trader/internal/eod"
	"auto-trader/internal/eod/eodobs"
	"auto-trader/internal/exchange/binance"
	"auto-trader/internal/exchange/exchangeobs"
	"auto-trader/internal/execution"
	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/notify/telegram"
	"auto-trader/internal/risk"
	"auto-trader/internal/state"
	"auto-trader/internal/store"
	"auto-trader/internal/strategy/emacross"
	"auto-trader/internal/strategy/strategyobs"
	"auto-trader/internal/trace"
	"auto-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// compressOldLogs gzips journal files past the retention window.
func compressOldLogs(ctx context.Context, cfg *store.Config) {
	n, err := tradelog.CompressOlder(cfg.JournalDir, cfg.JournalRetentionDays, time.Now())
	if err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
		return
	}
	if n > 0 {
		logger.Info(ctx, "Compressed old journal files", "count", n)
	}
}

// initializeExchange builds the Binance client. The raw client is returned
// too so the caller can sync server time on it.
func initializeExchange(ctx context.Context, cfg *store.Config) (*binance.Client, interfaces.ExchangeClient) {
	client := binance.New(binance.Params{
		BaseURL:           cfg.Binance.BaseURL,
		APIKey:            cfg.Binance.APIKey,
		SecretKey:         cfg.Binance.SecretKey,
		RecvWindow:        cfg.Binance.RecvWindow,
		DryRun:            cfg.DryRun,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerSecond: cfg.Binance.RequestsPerSecond,
	})

	if cfg.DryRun {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	} else {
		logger.Warn(ctx, "Running in LIVE mode - order placement is not implemented and will fail")
	}

	return client, exchangeobs.Wrap(client)
}

// syncServerTime is best effort; signed calls fall back to the local clock.
func syncServerTime(ctx context.Context, client *binance.Client) {
	offset, err := client.SyncTime(ctx)
	if err != nil {
		logger.Warn(ctx, "Failed to sync Binance server time", "error", err)
		return
	}
	logger.Info(ctx, "Binance server time synced", "offset_ms", offset.Milliseconds())
}

func initializeStrategy(cfg *store.Config) (interfaces.Strategy, error) {
	strat, err := emacross.New(emacross.Config{
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy: %w", err)
	}
	return strategyobs.Wrap(strat, cfg.Symbol), nil
}

// initializeEngine wires the tick pipeline with observability.
func initializeEngine(
	cfg *store.Config,
	exchange interfaces.ExchangeClient,
	strategy interfaces.Strategy,
	session *state.Session,
	journal interfaces.Journal,
) interfaces.Engine {
	eng := engine.New(cfg, exchange, strategy, risk.NewEvaluator(), execution.NewRouter(exchange), session, journal)
	return engineobs.Wrap(eng, cfg.Symbol)
}

func initializeJournal(ctx context.Context, cfg *store.Config) interfaces.Journal {
	j, err := tradelog.New(cfg.JournalDir)
	if err != nil {
		logger.Warn(ctx, "Trade journal disabled", "dir", cfg.JournalDir, "error", err)
		return nil
	}
	return j
}

func initializeEOD(cfg *store.Config) interfaces.EodSummarizer {
	return eodobs.Wrap(eod.NewSummarizer(cfg.JournalDir))
}

func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	n := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID, telegram.WithTimeout(cfg.RequestTimeout()))
	if !n.Enabled() {
		logger.Info(ctx, "Telegram notifications disabled")
	}
	return n
}
