package binance

import (
	"fmt"
	"time"

	"auto-trader/internal/exchange"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

func invalidResponse(format string, args ...any) error {
	return &exchange.ExchangeError{Exchange: Name, Message: "invalid response: " + fmt.Sprintf(format, args...)}
}

func parseDecimal(field string, r gjson.Result) (decimal.Decimal, error) {
	if !r.Exists() {
		return decimal.Zero, invalidResponse("missing %s", field)
	}
	d, err := decimal.NewFromString(r.String())
	if err != nil {
		return decimal.Zero, invalidResponse("%s=%q: %v", field, r.String(), err)
	}
	return d, nil
}

func parseMarkPrice(body []byte, now func() time.Time) (types.PriceQuote, error) {
	if !gjson.ValidBytes(body) {
		return types.PriceQuote{}, invalidResponse("premiumIndex is not JSON")
	}
	doc := gjson.ParseBytes(body)
	price, err := parseDecimal("markPrice", doc.Get("markPrice"))
	if err != nil {
		return types.PriceQuote{}, err
	}
	at := now().UTC()
	if ms := doc.Get("time").Int(); ms > 0 {
		at = time.UnixMilli(ms).UTC()
	}
	return types.PriceQuote{
		Symbol:    doc.Get("symbol").String(),
		MarkPrice: price,
		EventTime: at,
	}, nil
}

// parseKlines reads [openTime, open, high, low, close, volume, closeTime, ...] rows.
func parseKlines(body []byte) ([]types.Candle, error) {
	if !gjson.ValidBytes(body) {
		return nil, invalidResponse("klines is not JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, invalidResponse("klines is not an array")
	}

	rows := doc.Array()
	candles := make([]types.Candle, 0, len(rows))
	for i, row := range rows {
		cols := row.Array()
		if len(cols) < 7 {
			return nil, invalidResponse("kline %d has %d columns", i, len(cols))
		}
		var prices [5]decimal.Decimal
		for j, name := range []string{"open", "high", "low", "close", "volume"} {
			d, err := parseDecimal(name, cols[j+1])
			if err != nil {
				return nil, err
			}
			prices[j] = d
		}
		candles = append(candles, types.Candle{
			OpenTime:  time.UnixMilli(cols[0].Int()).UTC(),
			Open:      prices[0],
			High:      prices[1],
			Low:       prices[2],
			Close:     prices[3],
			Volume:    prices[4],
			CloseTime: time.UnixMilli(cols[6].Int()).UTC(),
		})
	}
	return candles, nil
}

func parseBalances(body []byte) ([]types.Balance, error) {
	if !gjson.ValidBytes(body) {
		return nil, invalidResponse("balance is not JSON")
	}
	items := gjson.ParseBytes(body).Array()
	out := make([]types.Balance, 0, len(items))
	for _, item := range items {
		wallet, err := parseDecimal("balance", item.Get("balance"))
		if err != nil {
			return nil, err
		}
		avail, err := parseDecimal("availableBalance", item.Get("availableBalance"))
		if err != nil {
			return nil, err
		}
		out = append(out, types.Balance{
			Asset:            item.Get("asset").String(),
			WalletBalance:    wallet,
			AvailableBalance: avail,
		})
	}
	return out, nil
}

// parsePositions drops rows with a zero position amount.
func parsePositions(body []byte, asOf time.Time) ([]types.PositionSummary, error) {
	if !gjson.ValidBytes(body) {
		return nil, invalidResponse("positionRisk is not JSON")
	}
	items := gjson.ParseBytes(body).Array()
	out := make([]types.PositionSummary, 0, len(items))
	for _, item := range items {
		amt, err := parseDecimal("positionAmt", item.Get("positionAmt"))
		if err != nil {
			return nil, err
		}
		if amt.IsZero() {
			continue
		}
		entry, err := parseDecimal("entryPrice", item.Get("entryPrice"))
		if err != nil {
			return nil, err
		}
		upnl, err := parseDecimal("unRealizedProfit", item.Get("unRealizedProfit"))
		if err != nil {
			return nil, err
		}
		out = append(out, types.PositionSummary{
			Symbol:        item.Get("symbol").String(),
			Size:          amt,
			EntryPrice:    entry,
			UnrealizedPnL: upnl,
			Leverage:      int(item.Get("leverage").Int()),
			AsOf:          asOf.UTC(),
		})
	}
	return out, nil
}

func parseServerTime(body []byte) (int64, error) {
	r := gjson.GetBytes(body, "serverTime")
	if !r.Exists() {
		return 0, invalidResponse("missing serverTime")
	}
	return r.Int(), nil
}
