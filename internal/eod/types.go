package eod

import "github.com/shopspring/decimal"

// aggRow accumulates one symbol's routed orders for the day.
type aggRow struct {
	Symbol    string
	Orders    int
	BuyQty    decimal.Decimal // total base quantity bought
	BuyValue  decimal.Decimal // sum of qty * ref price
	SellQty   decimal.Decimal
	SellValue decimal.Decimal
}

func (r *aggRow) buyAvg() decimal.Decimal {
	if r.BuyQty.IsZero() {
		return decimal.Zero
	}
	return r.BuyValue.DivRound(r.BuyQty, 8)
}

func (r *aggRow) sellAvg() decimal.Decimal {
	if r.SellQty.IsZero() {
		return decimal.Zero
	}
	return r.SellValue.DivRound(r.SellQty, 8)
}

// realizedPnL prices the matched quantity at the average sell minus the
// average buy. Unmatched quantity is open exposure and is not counted.
func (r *aggRow) realizedPnL() decimal.Decimal {
	matched := decimal.Min(r.BuyQty, r.SellQty)
	return matched.Mul(r.sellAvg().Sub(r.buyAvg()))
}
