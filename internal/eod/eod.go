package eod

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"auto-trader/internal/tradelog"

	"github.com/shopspring/decimal"
)

type summarizer struct {
	dir    string
	cutoff time.Duration

	mu sync.Mutex
	// done is the last UTC day summarized by this process, with or without orders.
	done string
}

var header = []string{"symbol", "orders", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}

// SummarizeDay aggregates the day's routed orders per symbol into a CSV
// under <journal dir>/eod. A day without orders writes nothing and returns
// an empty path.
func (s *summarizer) SummarizeDay(_ context.Context, day time.Time) (string, error) {
	orders, err := tradelog.ReadOrders(s.dir, day)
	if err != nil {
		return "", fmt.Errorf("read journal: %w", err)
	}

	aggs := map[string]*aggRow{}
	for _, o := range orders {
		row := aggs[o.Symbol]
		if row == nil {
			row = &aggRow{Symbol: o.Symbol}
			aggs[o.Symbol] = row
		}
		row.Orders++
		value := o.Qty.Mul(o.Price)
		switch o.Side {
		case "BUY":
			row.BuyQty = row.BuyQty.Add(o.Qty)
			row.BuyValue = row.BuyValue.Add(value)
		case "SELL":
			row.SellQty = row.SellQty.Add(o.Qty)
			row.SellValue = row.SellValue.Add(value)
		}
	}
	if len(aggs) == 0 {
		s.markDone(day)
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := csvPath(s.dir, day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return "", err
	}

	var totalBuy, totalSell, totalPnL decimal.Decimal
	totalOrders := 0
	for _, k := range keys {
		r := aggs[k]
		pnl := r.realizedPnL()
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Orders),
			r.BuyQty.String(),
			r.buyAvg().StringFixed(4),
			r.SellQty.String(),
			r.sellAvg().StringFixed(4),
			pnl.StringFixed(2),
			r.BuyValue.StringFixed(2),
			r.SellValue.StringFixed(2),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalOrders += r.Orders
		totalBuy = totalBuy.Add(r.BuyValue)
		totalSell = totalSell.Add(r.SellValue)
		totalPnL = totalPnL.Add(pnl)
	}
	if err := w.Write([]string{"TOTAL", strconv.Itoa(totalOrders), "", "", "", "", totalPnL.StringFixed(2), totalBuy.StringFixed(2), totalSell.StringFixed(2)}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	s.markDone(day)
	return outPath, nil
}

func (s *summarizer) markDone(day time.Time) {
	s.mu.Lock()
	s.done = day.UTC().Format(dayLayout)
	s.mu.Unlock()
}

// ShouldRunNow is true once now is past the cutoff, today has not been
// summarized yet and today's CSV is absent.
func (s *summarizer) ShouldRunNow(now time.Time) (bool, string) {
	outPath := csvPath(s.dir, now)
	if now.UTC().Before(cutoffFor(now, s.cutoff)) {
		return false, outPath
	}
	s.mu.Lock()
	done := s.done == now.UTC().Format(dayLayout)
	s.mu.Unlock()
	if done {
		return false, outPath
	}
	if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
		return true, outPath
	}
	return false, outPath
}
