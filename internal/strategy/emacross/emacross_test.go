package emacross

import (
	"context"
	"strings"
	"testing"
	"time"

	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func candlesFromCloses(closes ...float64) []types.Candle {
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		open := t0.Add(time.Duration(i) * time.Minute)
		px := decimal.NewFromFloat(c)
		out[i] = types.Candle{
			OpenTime:  open,
			CloseTime: open.Add(time.Minute - time.Millisecond),
			Open:      px, High: px, Low: px, Close: px,
			Volume: decimal.NewFromInt(1),
		}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newFast3Slow5(t *testing.T) *Strategy {
	t.Helper()
	s, err := New(Config{FastPeriod: 3, SlowPeriod: 5})
	require.NoError(t, err)
	return s
}

func TestCrossScenarios(t *testing.T) {
	cases := []struct {
		name       string
		closes     []float64
		wantSignal types.Signal
		wantReason string
	}{
		{"cross above", append(repeat(10, 8), 8, 16), types.SignalLong, "crossed above"},
		{"cross below", append(repeat(10, 8), 12, 4), types.SignalShort, "crossed below"},
		{"flat", repeat(10, 12), types.SignalHold, "no EMA crossover on latest candle close"},
		{"touch then break up", append(repeat(10, 9), 16), types.SignalLong, "(3>5)"},
		{"touch then break down", append(repeat(10, 9), 4), types.SignalShort, "(3<5)"},
	}

	s := newFast3Slow5(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candles := candlesFromCloses(tc.closes...)
			got := s.Generate(context.Background(), candles, nil)
			assert.Equal(t, tc.wantSignal, got.Signal)
			assert.Contains(t, got.Reason, tc.wantReason)
			assert.Equal(t, candles[len(candles)-1].CloseTime, got.Timestamp)
			assert.Nil(t, got.Confidence)
		})
	}
}

func TestAlreadyAboveIsNotACross(t *testing.T) {
	s := newFast3Slow5(t)
	got := s.Generate(context.Background(), candlesFromCloses(append(repeat(10, 8), 16, 17)...), nil)
	assert.Equal(t, types.SignalHold, got.Signal)
}

func TestInsufficientCandles(t *testing.T) {
	s := newFast3Slow5(t)
	candles := candlesFromCloses(repeat(10, 9)...)

	got := s.Generate(context.Background(), candles, nil)
	assert.Equal(t, types.SignalHold, got.Signal)
	assert.Equal(t, "insufficient candles: need 10, got 9", got.Reason)
	assert.Equal(t, candles[8].CloseTime, got.Timestamp)
}

func TestInsufficientCandlesEmptyUsesClock(t *testing.T) {
	now := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	s, err := New(Config{FastPeriod: 9, SlowPeriod: 21}, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	got := s.Generate(context.Background(), nil, nil)
	assert.Equal(t, "insufficient candles: need 26, got 0", got.Reason)
	assert.Equal(t, now, got.Timestamp)
}

func TestPositionIsIgnored(t *testing.T) {
	s := newFast3Slow5(t)
	candles := candlesFromCloses(append(repeat(10, 8), 8, 16)...)
	long := &types.PositionSummary{Symbol: "BTCUSDT", Size: decimal.NewFromInt(1)}

	assert.Equal(t,
		s.Generate(context.Background(), candles, nil),
		s.Generate(context.Background(), candles, long))
}

func TestConfigValidation(t *testing.T) {
	for _, cfg := range []Config{
		{FastPeriod: 5, SlowPeriod: 5},
		{FastPeriod: 8, SlowPeriod: 5},
		{FastPeriod: 0, SlowPeriod: 5},
		{FastPeriod: 3, SlowPeriod: -1},
		{FastPeriod: 3, SlowPeriod: 5, MinCandles: -2},
	} {
		_, err := New(cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestMinCandles(t *testing.T) {
	s, err := New(Config{FastPeriod: 3, SlowPeriod: 5, MinCandles: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, s.MinCandles())

	s, err = New(Config{FastPeriod: 3, SlowPeriod: 5, MinCandles: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, s.MinCandles())

	got := s.Generate(context.Background(), candlesFromCloses(10, 10, 10, 10, 10, 16), nil)
	assert.Equal(t, types.SignalLong, got.Signal)
	assert.True(t, strings.HasPrefix(got.Reason, "fast EMA crossed above"))
}
