package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/server"
	"auto-trader/internal/state"
	"auto-trader/internal/store"
	"auto-trader/internal/trace"

	"golang.org/x/sync/errgroup"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "optional YAML config file")
	once := flag.Bool("once", false, "run a single tick and exit")
	iterations := flag.Int("iterations", 0, "stop after N ticks (0 runs until interrupted)")
	flag.Parse()

	must(initializeSystem())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, *configPath)
	must(err)

	compressOldLogs(ctx, cfg)

	client, exchange := initializeExchange(ctx, cfg)
	syncServerTime(ctx, client)

	strategy, err := initializeStrategy(cfg)
	must(err)

	session := state.NewSession()
	journal := initializeJournal(ctx, cfg)
	b := &bot{
		cfg:      cfg,
		engine:   initializeEngine(cfg, exchange, strategy, session, journal),
		equity:   state.NewEquityTracker(exchange, session, state.DefaultQuoteAsset),
		notifier: initializeNotifier(ctx, cfg),
		eod:      initializeEOD(cfg),
		out:      json.NewEncoder(os.Stdout),
	}

	n := *iterations
	if *once {
		n = 1
	}

	logger.Info(ctx, "Bot started",
		"symbol", cfg.Symbol,
		"timeframe", cfg.Timeframe,
		"dry_run", cfg.DryRun,
		"poll_seconds", cfg.PollSeconds,
		"iterations", n,
	)
	if cfg.DryRun && cfg.Telegram.NotifyOnStart {
		b.notifier.SendMessage(ctx, fmt.Sprintf("[DRY_RUN] Auto-trader bot started for %s", cfg.Symbol))
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// a bounded run ends the status server too
		defer cancel()
		return b.run(gctx, n)
	})
	if cfg.StatusAddr != "" {
		srv := server.New(cfg.StatusAddr, server.NewRouter(cfg.Symbol, cfg.DryRun, session))
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}
	err = g.Wait()
	cancel()

	shutdown(context.Background(), b, journal)
	must(err)
}

func shutdown(ctx context.Context, b *bot, journal interfaces.Journal) {
	logger.Info(ctx, "Shutting down...")
	b.summarize(ctx, time.Now())
	if journal != nil {
		if err := journal.Close(); err != nil {
			logger.Warn(ctx, "Failed to close journal", "error", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(shutdownCtx)
}

// bot drives the engine on a fixed poll interval.
type bot struct {
	cfg      *store.Config
	engine   interfaces.Engine
	equity   equityRefresher
	notifier interfaces.Notifier
	eod      interfaces.EodSummarizer
	out      *json.Encoder
}
