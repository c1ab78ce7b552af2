package risk

import (
	"fmt"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/types"
)

const (
	ReasonHold   = "HOLD signal"
	ReasonPassed = "Risk checks passed"
)

// Evaluator applies the daily guardrails. The first matching rule wins, and
// a HOLD signal is reported as INFO before any limit is looked at.
type Evaluator struct{}

var _ interfaces.RiskEvaluator = (*Evaluator)(nil)

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(
	limits types.RiskLimits,
	session interfaces.SessionReader,
	_ *types.PositionSummary,
	signal types.SignalDecision,
) types.RiskDecision {
	if signal.Signal == types.SignalHold {
		return types.Deny(types.SeverityInfo, ReasonHold)
	}

	if trades := session.TradesToday(); trades >= limits.MaxTradesPerDay {
		return types.Deny(types.SeverityBlock,
			fmt.Sprintf("Max trades per day reached: %d/%d", trades, limits.MaxTradesPerDay))
	}

	pnl := session.DayPnLPct()
	if pnl.GreaterThanOrEqual(limits.DailyProfitStopPct) {
		return types.Deny(types.SeverityBlock,
			fmt.Sprintf("Daily profit stop reached: %s%% >= %s%%", pnl.StringFixed(2), limits.DailyProfitStopPct.StringFixed(2)))
	}
	if pnl.LessThanOrEqual(limits.DailyLossStopPct) {
		return types.Deny(types.SeverityBlock,
			fmt.Sprintf("Daily loss stop reached: %s%% <= %s%%", pnl.StringFixed(2), limits.DailyLossStopPct.StringFixed(2)))
	}

	return types.Allow(ReasonPassed)
}
