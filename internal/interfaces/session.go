package interfaces

import (
	"time"

	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
)

type SessionReader interface {
	TradesToday() int
	DayPnLPct() decimal.Decimal
}

type Session interface {
	SessionReader
	MarkTick() int64
	RecordTrade(symbol string, at time.Time, position *types.PositionSummary)
	Position(symbol string) *types.PositionSummary
}
