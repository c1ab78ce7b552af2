package exchangeobs

import (
	"context"
	"testing"

	"auto-trader/internal/exchange"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExchange struct {
	mock.Mock
}

func (m *mockExchange) GetMarkPrice(ctx context.Context, symbol string) (types.PriceQuote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(types.PriceQuote), args.Error(1)
}

func (m *mockExchange) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	args := m.Called(ctx, symbol, timeframe, limit)
	candles, _ := args.Get(0).([]types.Candle)
	return candles, args.Error(1)
}

func (m *mockExchange) GetBalances(ctx context.Context) ([]types.Balance, error) {
	args := m.Called(ctx)
	balances, _ := args.Get(0).([]types.Balance)
	return balances, args.Error(1)
}

func (m *mockExchange) GetPositions(ctx context.Context, symbol string) ([]types.PositionSummary, error) {
	args := m.Called(ctx, symbol)
	positions, _ := args.Get(0).([]types.PositionSummary)
	return positions, args.Error(1)
}

func (m *mockExchange) PlaceOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.OrderResult), args.Error(1)
}

func TestWrapPassesResultsThrough(t *testing.T) {
	inner := &mockExchange{}
	quote := types.PriceQuote{Symbol: "BTCUSDT", MarkPrice: decimal.NewFromInt(100)}
	inner.On("GetMarkPrice", mock.Anything, "BTCUSDT").Return(quote, nil).Once()
	inner.On("GetCandles", mock.Anything, "BTCUSDT", "15m", 50).Return([]types.Candle{{Close: decimal.NewFromInt(1)}}, nil).Once()

	c := Wrap(inner)
	got, err := c.GetMarkPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, quote, got)

	candles, err := c.GetCandles(context.Background(), "BTCUSDT", "15m", 50)
	require.NoError(t, err)
	assert.Len(t, candles, 1)

	inner.AssertExpectations(t)
}

func TestWrapPropagatesErrorsUnchanged(t *testing.T) {
	inner := &mockExchange{}
	authErr := exchange.NewAuthError("binance", "authentication failed")
	inner.On("GetPositions", mock.Anything, "BTCUSDT").Return(nil, authErr).Once()
	inner.On("PlaceOrder", mock.Anything, mock.Anything).Return(types.OrderResult{}, &exchange.ExchangeError{Kind: exchange.ErrNotImplemented, Message: "disabled"}).Once()

	c := Wrap(inner)
	_, err := c.GetPositions(context.Background(), "BTCUSDT")
	assert.Same(t, authErr, err)

	_, err = c.PlaceOrder(context.Background(), types.OrderRequest{Symbol: "BTCUSDT", Side: types.SideBuy})
	assert.ErrorIs(t, err, exchange.ErrNotImplemented)

	inner.AssertExpectations(t)
}
