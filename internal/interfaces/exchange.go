package interfaces

import (
	"context"

	"auto-trader/internal/types"
)

// ExchangeClient is the market-data and order contract the pipeline trades through.
type ExchangeClient interface {
	GetMarkPrice(ctx context.Context, symbol string) (types.PriceQuote, error)
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
	GetBalances(ctx context.Context) ([]types.Balance, error)
	// GetPositions returns open positions; an empty symbol means all symbols.
	GetPositions(ctx context.Context, symbol string) ([]types.PositionSummary, error)
	PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error)
}
