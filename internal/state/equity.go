package state

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"

	"github.com/shopspring/decimal"
)

const DefaultQuoteAsset = "USDT"

var hundred = decimal.NewFromInt(100)

// EquityTracker derives the day P&L percentage from the quote-asset wallet
// balance. The first balance it sees becomes the baseline.
type EquityTracker struct {
	exchange interfaces.ExchangeClient
	session  *Session
	asset    string

	mu       sync.Mutex
	baseline decimal.Decimal
	hasBase  bool
}

func NewEquityTracker(exchange interfaces.ExchangeClient, session *Session, asset string) *EquityTracker {
	if asset == "" {
		asset = DefaultQuoteAsset
	}
	return &EquityTracker{exchange: exchange, session: session, asset: strings.ToUpper(asset)}
}

// Refresh fetches balances and pushes the new percentage into the session.
// When the asset is missing (dry-run without credentials) the session is
// left untouched and ok is false.
func (t *EquityTracker) Refresh(ctx context.Context) (pct decimal.Decimal, ok bool, err error) {
	op := logger.StartOperation(ctx, "equity.refresh", "asset", t.asset)
	ctx = op.Context()

	balances, err := t.exchange.GetBalances(ctx)
	if err != nil {
		err = fmt.Errorf("refresh equity: %w", err)
		op.EndWithError(err)
		return decimal.Zero, false, err
	}

	var equity decimal.Decimal
	found := false
	for _, b := range balances {
		if strings.EqualFold(b.Asset, t.asset) {
			equity = b.WalletBalance
			found = true
			break
		}
	}
	if !found {
		logger.Debug(ctx, "quote asset not in balances", "asset", t.asset, "count", len(balances))
		op.End("found", false)
		return decimal.Zero, false, nil
	}

	pct = t.Observe(equity)
	t.session.UpdateDayPnL(pct)
	metrics.DayPnLPct.Set(pct.InexactFloat64())
	op.End("found", true, "day_pnl_pct", pct)
	return pct, true, nil
}

// Observe records an equity reading and returns the change from baseline in
// percent. A zero baseline yields zero.
func (t *EquityTracker) Observe(equity decimal.Decimal) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasBase {
		t.baseline = equity
		t.hasBase = true
	}
	if t.baseline.IsZero() {
		return decimal.Zero
	}
	return equity.Sub(t.baseline).Div(t.baseline).Mul(hundred)
}

// Baseline returns the first observed equity, if any.
func (t *EquityTracker) Baseline() (decimal.Decimal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baseline, t.hasBase
}
