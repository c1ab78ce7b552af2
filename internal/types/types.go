package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Candle struct {
	OpenTime  time.Time       `json:"open_time"`
	CloseTime time.Time       `json:"close_time"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

type PriceQuote struct {
	Symbol    string          `json:"symbol"`
	MarkPrice decimal.Decimal `json:"mark_price"`
	EventTime time.Time       `json:"event_time"`
}

type Balance struct {
	Asset            string          `json:"asset"`
	WalletBalance    decimal.Decimal `json:"wallet_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

type PositionSide string

const (
	PositionFlat  PositionSide = "FLAT"
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// PositionSummary is a signed position: positive size is long, negative is short.
type PositionSummary struct {
	Symbol        string          `json:"symbol"`
	Size          decimal.Decimal `json:"size"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	Leverage      int             `json:"leverage"`
	AsOf          time.Time       `json:"as_of"`
}

func (p PositionSummary) Side() PositionSide {
	switch p.Size.Sign() {
	case 1:
		return PositionLong
	case -1:
		return PositionShort
	default:
		return PositionFlat
	}
}

// Signal is closed: HOLD, LONG or SHORT.
type Signal uint8

const (
	SignalHold Signal = iota
	SignalLong
	SignalShort
)

func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "HOLD"
	case SignalLong:
		return "LONG"
	case SignalShort:
		return "SHORT"
	default:
		return fmt.Sprintf("Signal(%d)", uint8(s))
	}
}

func (s Signal) Valid() bool {
	return s <= SignalShort
}

func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// OrderSide maps LONG to BUY and SHORT to SELL. HOLD has no side.
func (s Signal) OrderSide() (OrderSide, error) {
	switch s {
	case SignalLong:
		return SideBuy, nil
	case SignalShort:
		return SideSell, nil
	default:
		return 0, fmt.Errorf("signal %s has no order side", s)
	}
}

// PositionSide is the side a filled order for this signal would leave us on.
func (s Signal) PositionSide() PositionSide {
	switch s {
	case SignalLong:
		return PositionLong
	case SignalShort:
		return PositionShort
	default:
		return PositionFlat
	}
}

type SignalDecision struct {
	Signal     Signal    `json:"signal"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence *float64  `json:"confidence,omitempty"`
}

type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityBlock
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityBlock:
		return "BLOCK"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type RiskDecision struct {
	Allow    bool     `json:"allow"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

func Allow(reason string) RiskDecision {
	return RiskDecision{Allow: true, Reason: reason, Severity: SeverityInfo}
}

// Deny builds a refusal. A refusal always carries a reason.
func Deny(severity Severity, reason string) RiskDecision {
	if reason == "" {
		panic("types: risk denial without a reason")
	}
	return RiskDecision{Allow: false, Reason: reason, Severity: severity}
}

type OrderSide uint8

const (
	SideBuy OrderSide = iota + 1
	SideSell
)

func (s OrderSide) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("OrderSide(%d)", uint8(s))
	}
}

func (s OrderSide) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type OrderType string

const OrderTypeMarket OrderType = "MARKET"

type OrderRequest struct {
	Symbol   string          `json:"symbol"`
	Side     OrderSide       `json:"side"`
	Type     OrderType       `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
}

type OrderResult struct {
	Status        string          `json:"status"`
	Symbol        string          `json:"symbol"`
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id,omitempty"`
	Side          OrderSide       `json:"side,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	// RefPrice is the mark price the order was sized against.
	RefPrice decimal.Decimal `json:"ref_price"`
}

// RiskLimits are the daily guardrails.
type RiskLimits struct {
	MaxTradesPerDay    int             `json:"max_trades_per_day"`
	DailyProfitStopPct decimal.Decimal `json:"daily_profit_stop_pct"`
	DailyLossStopPct   decimal.Decimal `json:"daily_loss_stop_pct"`
}

// RouteParams tell the router what to trade and how large.
type RouteParams struct {
	Symbol       string          `json:"symbol"`
	NotionalUSDT decimal.Decimal `json:"notional_usdt"`
}

// ExecutionResult carries either placed orders or a skip reason, never both.
// Build it with Executed or Skipped.
type ExecutionResult struct {
	Orders     []OrderResult `json:"orders,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty"`
}

func Executed(orders ...OrderResult) ExecutionResult {
	return ExecutionResult{Orders: orders}
}

func Skipped(reason string) ExecutionResult {
	return ExecutionResult{SkipReason: reason}
}

func (r ExecutionResult) IsSkipped() bool {
	return len(r.Orders) == 0
}

// TickResult is what one pipeline pass produced.
type TickResult struct {
	Symbol    string           `json:"symbol"`
	Tick      int64            `json:"tick"`
	Signal    SignalDecision   `json:"signal"`
	Risk      RiskDecision     `json:"risk"`
	Execution ExecutionResult  `json:"execution"`
	Position  *PositionSummary `json:"position,omitempty"`
	At        time.Time        `json:"at"`
}
