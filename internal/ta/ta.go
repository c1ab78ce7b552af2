package ta

import (
	"errors"

	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
)

// divPrecision is the number of decimal places kept by divisions.
const divPrecision = 28

var (
	ErrBadPeriod     = errors.New("period must be positive")
	ErrNotEnoughData = errors.New("not enough values")
)

// Closes extracts close prices, preserving order.
func Closes(candles []types.Candle) []decimal.Decimal {
	out := make([]decimal.Decimal, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA is the mean of the first n values.
func SMA(values []decimal.Decimal, n int) (decimal.Decimal, error) {
	if n <= 0 {
		return decimal.Zero, ErrBadPeriod
	}
	if len(values) < n {
		return decimal.Zero, ErrNotEnoughData
	}
	return decimal.Sum(values[0], values[1:n]...).DivRound(decimal.NewFromInt(int64(n)), divPrecision), nil
}

// EMASeries returns an EMA aligned index-for-index with values. The seed is
// the SMA of the first period values and fills the first period-1 slots.
func EMASeries(values []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	seed, err := SMA(values, period)
	if err != nil {
		return nil, err
	}

	k := decimal.NewFromInt(2).DivRound(decimal.NewFromInt(int64(period+1)), divPrecision)
	out := make([]decimal.Decimal, len(values))
	for i := 0; i < period; i++ {
		out[i] = seed
	}
	prev := seed
	for i := period; i < len(values); i++ {
		prev = values[i].Sub(prev).Mul(k).Add(prev).Round(divPrecision)
		out[i] = prev
	}
	return out, nil
}
