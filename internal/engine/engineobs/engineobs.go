package engineobs

import (
	"context"
	"time"

	"auto-trader/internal/engine"
	"auto-trader/internal/exchange"
	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"
	"auto-trader/internal/trace"
	"auto-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
	symbol string
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine, symbol string) interfaces.Engine {
	return &observableEngine{
		engine: eng,
		symbol: symbol,
	}
}

func (oe *observableEngine) Step(ctx context.Context) (*types.TickResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	logger.DebugSkip(ctx, 1, "Starting trading cycle", "symbol", oe.symbol)

	result, err := oe.engine.Step(ctx)
	if err != nil {
		metrics.TicksTotal.WithLabelValues(oe.symbol, "error").Inc()
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"symbol", oe.symbol,
			"error_kind", exchange.Kind(err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	outcome := engine.Outcome(result)
	metrics.TicksTotal.WithLabelValues(oe.symbol, outcome).Inc()

	fields := []any{
		"symbol", oe.symbol,
		"tick", result.Tick,
		"signal", result.Signal.Signal.String(),
		"risk_allow", result.Risk.Allow,
		"risk_reason", result.Risk.Reason,
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if result.Execution.SkipReason != "" {
		fields = append(fields, "skip_reason", result.Execution.SkipReason)
	}
	logger.InfoSkip(ctx, 1, "Trading cycle completed", fields...)

	return result, nil
}
