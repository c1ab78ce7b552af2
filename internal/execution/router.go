package execution

import (
	"context"
	"fmt"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
)

const (
	ReasonSignalHold = "Signal is HOLD"
	ReasonAlready    = "Already %s"
)

// Router turns an approved signal into at most one market order.
type Router struct {
	exchange interfaces.ExchangeClient
	now      func() time.Time
}

var _ interfaces.OrderRouter = (*Router)(nil)

type Option func(*Router)

func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

func NewRouter(exchange interfaces.ExchangeClient, opts ...Option) *Router {
	r := &Router{exchange: exchange, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route places one order or explains why it did not.
//
// Parameters:
//   - signal: the strategy decision for the latest closed candle
//   - risk: the guardrail verdict; a refusal short-circuits with its reason
//   - position: current position, nil when flat
//   - session: receives the trade counter and cached position on success
//   - params: symbol and order notional
//
// Returns:
//   - an ExecutionResult with either the placed order or a skip reason
//   - an error from pricing, sizing or placement; session is untouched then
//
// Skips never touch the exchange.
func (r *Router) Route(
	ctx context.Context,
	signal types.SignalDecision,
	risk types.RiskDecision,
	position *types.PositionSummary,
	session interfaces.Session,
	params types.RouteParams,
) (types.ExecutionResult, error) {
	if !risk.Allow {
		return types.Skipped(risk.Reason), nil
	}
	if signal.Signal == types.SignalHold {
		return types.Skipped(ReasonSignalHold), nil
	}
	if target := signal.Signal.PositionSide(); position != nil && position.Side() == target {
		return types.Skipped(fmt.Sprintf(ReasonAlready, target)), nil
	}

	side, err := signal.Signal.OrderSide()
	if err != nil {
		return types.ExecutionResult{}, err
	}

	quote, err := r.exchange.GetMarkPrice(ctx, params.Symbol)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("fetch mark price: %w", err)
	}

	qty, err := CalculateOrderQty(params.NotionalUSDT, quote.MarkPrice)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("size order for %s: %w", params.Symbol, err)
	}

	order, err := r.exchange.PlaceOrder(ctx, types.OrderRequest{
		Symbol:   params.Symbol,
		Side:     side,
		Type:     types.OrderTypeMarket,
		Quantity: qty,
	})
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("place %s order: %w", side, err)
	}
	order.RefPrice = quote.MarkPrice
	if order.Quantity.IsZero() {
		order.Quantity = qty
	}

	now := r.now().UTC()
	session.RecordTrade(params.Symbol, now, simulatedPosition(params.Symbol, side, qty, quote, now))

	logger.Trade(ctx, params.Symbol, side.String(), qty, quote.MarkPrice, order.OrderID,
		"signal", signal.Signal.String(),
		"order_status", order.Status,
		"trades_today", session.TradesToday(),
	)

	return types.Executed(order), nil
}

// simulatedPosition is the position a full fill leaves behind. It lets the
// session answer "already on this side" when the exchange reports nothing.
func simulatedPosition(symbol string, side types.OrderSide, qty decimal.Decimal, quote types.PriceQuote, at time.Time) *types.PositionSummary {
	size := qty
	if side == types.SideSell {
		size = qty.Neg()
	}
	return &types.PositionSummary{
		Symbol:     symbol,
		Size:       size,
		EntryPrice: quote.MarkPrice,
		AsOf:       at,
	}
}
