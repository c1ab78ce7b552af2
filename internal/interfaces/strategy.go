package interfaces

import (
	"context"

	"auto-trader/internal/types"
)

type Strategy interface {
	Generate(ctx context.Context, candles []types.Candle, position *types.PositionSummary) types.SignalDecision
}

type RiskEvaluator interface {
	Evaluate(limits types.RiskLimits, session SessionReader, position *types.PositionSummary, signal types.SignalDecision) types.RiskDecision
}

type OrderRouter interface {
	Route(
		ctx context.Context,
		signal types.SignalDecision,
		risk types.RiskDecision,
		position *types.PositionSummary,
		session Session,
		params types.RouteParams,
	) (types.ExecutionResult, error)
}
