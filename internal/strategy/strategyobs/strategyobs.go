package strategyobs

import (
	"context"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"
	"auto-trader/internal/trace"
	"auto-trader/internal/types"
)

// observableStrategy wraps a Strategy with observability (logging & tracing)
type observableStrategy struct {
	strategy interfaces.Strategy
	symbol   string
}

// Compile-time interface check
var _ interfaces.Strategy = (*observableStrategy)(nil)

// Wrap wraps a strategy with observability middleware. symbol only labels logs and metrics.
func Wrap(strategy interfaces.Strategy, symbol string) interfaces.Strategy {
	return &observableStrategy{
		strategy: strategy,
		symbol:   symbol,
	}
}

func (ob *observableStrategy) Generate(ctx context.Context, candles []types.Candle, position *types.PositionSummary) types.SignalDecision {
	ctx, span := trace.StartSpan(ctx, "strategy.Generate")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Generating signal",
		"symbol", ob.symbol,
		"candles", len(candles),
		"has_position", position != nil,
	)

	decision := ob.strategy.Generate(ctx, candles, position)

	metrics.SignalsTotal.WithLabelValues(ob.symbol, decision.Signal.String()).Inc()
	logger.Decision(ctx, ob.symbol, decision.Signal.String(), decision.Reason,
		"candle_close_time", decision.Timestamp,
	)
	return decision
}
