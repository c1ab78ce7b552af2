package engine

import (
	"strings"
	"time"

	"auto-trader/internal/types"
)

// pickPosition returns the non-flat row for symbol, or nil.
func pickPosition(positions []types.PositionSummary, symbol string) *types.PositionSummary {
	for i := range positions {
		p := positions[i]
		if strings.EqualFold(p.Symbol, symbol) && !p.Size.IsZero() {
			return &p
		}
	}
	return nil
}

// closedCandles drops trailing candles that have not closed by now. The
// klines endpoint always returns the forming candle last.
func closedCandles(candles []types.Candle, now time.Time) []types.Candle {
	n := len(candles)
	for n > 0 && candles[n-1].CloseTime.After(now) {
		n--
	}
	return candles[:n]
}

// Outcome labels a tick for metrics and logs.
func Outcome(r *types.TickResult) string {
	switch {
	case len(r.Execution.Orders) > 0:
		return "executed"
	case !r.Risk.Allow && r.Risk.Severity == types.SeverityBlock:
		return "blocked"
	default:
		return "skipped"
	}
}
