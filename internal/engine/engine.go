package engine

import (
	"context"
	"fmt"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"
	"auto-trader/internal/store"
	"auto-trader/internal/types"
)

type engine struct {
	symbol      string
	timeframe   string
	candleLimit int
	dryRun      bool
	limits      types.RiskLimits
	params      types.RouteParams

	exchange interfaces.ExchangeClient
	strategy interfaces.Strategy
	risk     interfaces.RiskEvaluator
	router   interfaces.OrderRouter
	session  interfaces.Session
	journal  interfaces.Journal
	now      func() time.Time
}

type Option func(*engine)

func WithClock(now func() time.Time) Option {
	return func(e *engine) {
		e.now = now
	}
}

func newEngine(
	cfg *store.Config,
	exchange interfaces.ExchangeClient,
	strategy interfaces.Strategy,
	risk interfaces.RiskEvaluator,
	router interfaces.OrderRouter,
	session interfaces.Session,
	journal interfaces.Journal,
	opts ...Option,
) *engine {
	e := &engine{
		symbol:      cfg.Symbol,
		timeframe:   cfg.Timeframe,
		candleLimit: cfg.CandleLimit,
		dryRun:      cfg.DryRun,
		limits:      cfg.RiskLimits(),
		params:      cfg.RouteParams(),
		exchange:    exchange,
		strategy:    strategy,
		risk:        risk,
		router:      router,
		session:     session,
		journal:     journal,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step runs one strictly sequential pass: tick bookkeeping, market data,
// position, signal, risk, routing, journal. An exchange or sizing error
// ends the pass after the tick was counted and is returned as is.
func (e *engine) Step(ctx context.Context) (*types.TickResult, error) {
	tick := e.session.MarkTick()
	logger.Debug(ctx, "Starting tick", "symbol", e.symbol, "tick", tick)

	candles, err := e.exchange.GetCandles(ctx, e.symbol, e.timeframe, e.candleLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	fetched := len(candles)
	candles = closedCandles(candles, e.now())
	logger.Debug(ctx, "Candles fetched", "symbol", e.symbol, "count", fetched, "closed", len(candles))

	position, err := e.currentPosition(ctx)
	if err != nil {
		return nil, err
	}

	signal := e.strategy.Generate(ctx, candles, position)
	decision := e.risk.Evaluate(e.limits, e.session, position, signal)
	metrics.RiskDecisionsTotal.WithLabelValues(fmt.Sprint(decision.Allow), decision.Severity.String()).Inc()
	if !decision.Allow && decision.Severity == types.SeverityBlock {
		logger.Risk(ctx, e.symbol, "GUARDRAIL_BLOCK",
			"reason", decision.Reason,
			"signal", signal.Signal.String(),
			"trades_today", e.session.TradesToday(),
			"day_pnl_pct", e.session.DayPnLPct().String(),
		)
	}

	execution, err := e.router.Route(ctx, signal, decision, position, e.session, e.params)
	if err != nil {
		return nil, err
	}
	if execution.IsSkipped() {
		logger.Debug(ctx, "No order routed", "symbol", e.symbol, "reason", execution.SkipReason)
	}

	result := &types.TickResult{
		Symbol:    e.symbol,
		Tick:      tick,
		Signal:    signal,
		Risk:      decision,
		Execution: execution,
		Position:  e.session.Position(e.symbol),
		At:        e.now().UTC(),
	}
	if result.Position == nil {
		result.Position = position
	}

	if e.journal != nil {
		if err := e.journal.RecordTick(ctx, result); err != nil {
			logger.ErrorWithErr(ctx, "Failed to journal tick", err, "symbol", e.symbol, "tick", tick)
		}
	}
	return result, nil
}

// currentPosition asks the exchange first. In dry-run the exchange knows
// nothing of simulated fills, so an empty answer falls back to the
// session's cached position.
func (e *engine) currentPosition(ctx context.Context) (*types.PositionSummary, error) {
	positions, err := e.exchange.GetPositions(ctx, e.symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	if p := pickPosition(positions, e.symbol); p != nil {
		return p, nil
	}
	if e.dryRun {
		return e.session.Position(e.symbol), nil
	}
	return nil, nil
}
