package exchangeobs

import (
	"context"
	"time"

	"auto-trader/internal/exchange"
	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"
	"auto-trader/internal/trace"
	"auto-trader/internal/types"
)

// observableExchange wraps an ExchangeClient with logging, tracing and metrics
type observableExchange struct {
	client interfaces.ExchangeClient
}

// Compile-time interface check
var _ interfaces.ExchangeClient = (*observableExchange)(nil)

// Wrap wraps an exchange client with observability middleware
func Wrap(client interfaces.ExchangeClient) interfaces.ExchangeClient {
	return &observableExchange{
		client: client,
	}
}

func observe(op string, start time.Time, err error) {
	metrics.ExchangeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.ExchangeRequestsTotal.WithLabelValues(op, exchange.Kind(err)).Inc()
}

func (oe *observableExchange) GetMarkPrice(ctx context.Context, symbol string) (types.PriceQuote, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.GetMarkPrice")
	defer span.End()
	start := time.Now()

	logger.DebugSkip(ctx, 1, "Fetching mark price", "symbol", symbol)

	quote, err := oe.client.GetMarkPrice(ctx, symbol)
	observe("mark_price", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch mark price", err, "symbol", symbol)
		return types.PriceQuote{}, err
	}

	logger.DebugSkip(ctx, 1, "Mark price fetched", "symbol", symbol, "mark_price", quote.MarkPrice.String())
	return quote, nil
}

func (oe *observableExchange) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.GetCandles")
	defer span.End()
	start := time.Now()

	logger.DebugSkip(ctx, 1, "Fetching candles", "symbol", symbol, "timeframe", timeframe, "limit", limit)

	candles, err := oe.client.GetCandles(ctx, symbol, timeframe, limit)
	observe("candles", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "symbol", symbol, "timeframe", timeframe)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched", "symbol", symbol, "count", len(candles))
	return candles, nil
}

func (oe *observableExchange) GetBalances(ctx context.Context) ([]types.Balance, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.GetBalances")
	defer span.End()
	start := time.Now()

	balances, err := oe.client.GetBalances(ctx)
	observe("balances", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balances", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Balances fetched", "count", len(balances))
	return balances, nil
}

func (oe *observableExchange) GetPositions(ctx context.Context, symbol string) ([]types.PositionSummary, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.GetPositions")
	defer span.End()
	start := time.Now()

	positions, err := oe.client.GetPositions(ctx, symbol)
	observe("positions", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err, "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched", "symbol", symbol, "count", len(positions))
	return positions, nil
}

func (oe *observableExchange) PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.PlaceOrder")
	defer span.End()
	start := time.Now()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", req.Symbol,
		"side", req.Side.String(),
		"type", string(req.Type),
		"quantity", req.Quantity.String(),
	)

	res, err := oe.client.PlaceOrder(ctx, req)
	observe("place_order", start, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", req.Symbol,
			"side", req.Side.String(),
			"quantity", req.Quantity.String(),
		)
		return types.OrderResult{}, err
	}

	metrics.OrdersTotal.WithLabelValues(req.Symbol, req.Side.String(), res.Status).Inc()
	logger.InfoSkip(ctx, 1, "Order placed",
		"symbol", res.Symbol,
		"order_id", res.OrderID,
		"status", res.Status,
	)
	return res, nil
}
