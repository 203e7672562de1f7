package risk

import (
	"errors"
	"math"
)

// ErrNoTrade is returned when no position should be opened: volatility or
// price is zero, negative or non-finite, or the computed quantity comes out
// non-positive. Callers must abstain for the cycle, not place a zero order.
var ErrNoTrade = errors.New("no tradable position size")

// PositionSize converts free quote balance, the per-trade risk fraction and
// recent volatility into an order quantity:
//
//	quantity = (free * riskFraction) / atr / price
//
// Size is inversely proportional to volatility, so a higher ATR yields a
// smaller position for the same capital at risk. The ATR divisor uses the
// volatility value as a price-scale proxy; the formula is kept as-is and its
// reference value is pinned in tests.
func PositionSize(free, riskFraction, atr, price float64) (float64, error) {
	if !isPositiveFinite(atr) || !isPositiveFinite(price) {
		return 0, ErrNoTrade
	}
	if free <= 0 || riskFraction <= 0 {
		return 0, ErrNoTrade
	}

	quantity := (free * riskFraction) / atr / price
	if !isPositiveFinite(quantity) {
		return 0, ErrNoTrade
	}

	return quantity, nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
