package emacross

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/ta"
	"auto-trader/internal/types"
)

const (
	DefaultFastPeriod = 9
	DefaultSlowPeriod = 21
)

type Config struct {
	FastPeriod int
	SlowPeriod int
	// MinCandles defaults to SlowPeriod+5.
	MinCandles int
}

func (c Config) Validate() error {
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 {
		return errors.New("EMA periods must be positive")
	}
	if c.FastPeriod >= c.SlowPeriod {
		return fmt.Errorf("fast period (%d) must be less than slow period (%d)", c.FastPeriod, c.SlowPeriod)
	}
	if c.MinCandles < 0 {
		return fmt.Errorf("min candles must not be negative, got %d", c.MinCandles)
	}
	return nil
}

type Option func(*Strategy)

// WithClock sets the clock used when there are no candles to timestamp from.
func WithClock(now func() time.Time) Option {
	return func(s *Strategy) {
		s.now = now
	}
}

// Strategy emits LONG/SHORT on a fast/slow EMA crossover at the latest
// close, HOLD otherwise. It is pure: the position is ignored.
type Strategy struct {
	fast       int
	slow       int
	minCandles int
	now        func() time.Time
}

var _ interfaces.Strategy = (*Strategy)(nil)

func New(cfg Config, opts ...Option) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Strategy{
		fast:       cfg.FastPeriod,
		slow:       cfg.SlowPeriod,
		minCandles: cfg.MinCandles,
		now:        time.Now,
	}
	if s.minCandles == 0 {
		s.minCandles = cfg.SlowPeriod + 5
	}
	// Two slow EMA points are needed to see a cross.
	if s.minCandles < cfg.SlowPeriod+1 {
		s.minCandles = cfg.SlowPeriod + 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Strategy) MinCandles() int {
	return s.minCandles
}

func (s *Strategy) Generate(_ context.Context, candles []types.Candle, _ *types.PositionSummary) types.SignalDecision {
	if len(candles) < s.minCandles {
		ts := s.now().UTC()
		if len(candles) > 0 {
			ts = candles[len(candles)-1].CloseTime
		}
		return types.SignalDecision{
			Signal:    types.SignalHold,
			Reason:    fmt.Sprintf("insufficient candles: need %d, got %d", s.minCandles, len(candles)),
			Timestamp: ts,
		}
	}

	closes := ta.Closes(candles)
	ts := candles[len(candles)-1].CloseTime

	// Lengths are checked above, so the series cannot fail.
	fastEMA, _ := ta.EMASeries(closes, s.fast)
	slowEMA, _ := ta.EMASeries(closes, s.slow)

	n := len(closes)
	prevFast, prevSlow := fastEMA[n-2], slowEMA[n-2]
	lastFast, lastSlow := fastEMA[n-1], slowEMA[n-1]

	switch {
	case prevFast.LessThanOrEqual(prevSlow) && lastFast.GreaterThan(lastSlow):
		return types.SignalDecision{
			Signal:    types.SignalLong,
			Reason:    fmt.Sprintf("fast EMA crossed above slow EMA (%d>%d)", s.fast, s.slow),
			Timestamp: ts,
		}
	case prevFast.GreaterThanOrEqual(prevSlow) && lastFast.LessThan(lastSlow):
		return types.SignalDecision{
			Signal:    types.SignalShort,
			Reason:    fmt.Sprintf("fast EMA crossed below slow EMA (%d<%d)", s.fast, s.slow),
			Timestamp: ts,
		}
	default:
		return types.SignalDecision{
			Signal:    types.SignalHold,
			Reason:    "no EMA crossover on latest candle close",
			Timestamp: ts,
		}
	}
}
