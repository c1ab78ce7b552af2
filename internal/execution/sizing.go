package execution

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePrice = errors.New("price must be greater than zero")
	ErrZeroQuantity     = errors.New("order quantity rounds to zero")
)

// CalculateOrderQty converts a quote-currency notional into base quantity.
// No exchange step-size rounding is applied. A notional too small for the
// price to yield a non-zero quantity at 8 decimals is an error.
func CalculateOrderQty(notional, price decimal.Decimal) (decimal.Decimal, error) {
	if price.Sign() <= 0 {
		return decimal.Zero, ErrNonPositivePrice
	}
	qty := notional.DivRound(price, qtyPrecision)
	if qty.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: notional %s at price %s", ErrZeroQuantity, notional, price)
	}
	return qty, nil
}

const qtyPrecision = 8
