package state

import (
	"sync"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/metrics"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
)

// Session is the in-memory state of one trading instance. Only the tick
// marker and the order router's success path mutate counters; the equity
// tracker pushes day P&L. Nothing here survives a restart.
type Session struct {
	mu sync.RWMutex

	now         func() time.Time
	startedAt   time.Time
	lastTickAt  time.Time
	tickCount   int64
	tradesToday int
	dayPnLPct   decimal.Decimal
	lastTradeAt time.Time
	positions   map[string]types.PositionSummary
}

var _ interfaces.Session = (*Session)(nil)

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		now:       time.Now,
		positions: make(map[string]types.PositionSummary),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now().UTC()
	return s
}

// MarkTick is called once per pipeline pass, before anything else.
func (s *Session) MarkTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickCount++
	s.lastTickAt = s.now().UTC()
	return s.tickCount
}

// RecordTrade counts a successful submission. A non-nil position replaces
// the cached one for symbol; a flat position clears it.
func (s *Session) RecordTrade(symbol string, at time.Time, position *types.PositionSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tradesToday++
	s.lastTradeAt = at.UTC()
	metrics.TradesToday.Set(float64(s.tradesToday))
	if position == nil {
		return
	}
	if position.Size.IsZero() {
		delete(s.positions, symbol)
		return
	}
	s.positions[symbol] = *position
}

// UpdateDayPnL replaces the day P&L percentage.
func (s *Session) UpdateDayPnL(pct decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dayPnLPct = pct
}

func (s *Session) TradesToday() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tradesToday
}

func (s *Session) DayPnLPct() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dayPnLPct
}

func (s *Session) TickCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickCount
}

func (s *Session) LastTradeAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTradeAt
}

// Position returns a copy of the cached position for symbol, or nil.
func (s *Session) Position(symbol string) *types.PositionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[symbol]
	if !ok {
		return nil
	}
	return &p
}

// Snapshot is a point-in-time copy for status and notifications.
type Snapshot struct {
	StartedAt   time.Time                        `json:"started_at"`
	LastTickAt  *time.Time                       `json:"last_tick_at,omitempty"`
	TickCount   int64                            `json:"tick_count"`
	TradesToday int                              `json:"trades_today"`
	DayPnLPct   decimal.Decimal                  `json:"day_pnl_pct"`
	LastTradeAt *time.Time                       `json:"last_trade_at,omitempty"`
	Positions   map[string]types.PositionSummary `json:"positions"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		StartedAt:   s.startedAt,
		TickCount:   s.tickCount,
		TradesToday: s.tradesToday,
		DayPnLPct:   s.dayPnLPct,
		Positions:   make(map[string]types.PositionSummary, len(s.positions)),
	}
	if !s.lastTickAt.IsZero() {
		t := s.lastTickAt
		snap.LastTickAt = &t
	}
	if !s.lastTradeAt.IsZero() {
		t := s.lastTradeAt
		snap.LastTradeAt = &t
	}
	for k, v := range s.positions {
		snap.Positions[k] = v
	}
	return snap
}
