package strategy

import "fmt"

// Regime is the trading regime selected for a symbol this cycle
type Regime string

const (
	RegimeRangeReversion Regime = "RANGE_REVERSION"
	RegimeTrendFollowing Regime = "TREND_FOLLOWING"
	RegimeNoTrade        Regime = "NO_TRADE"
)

// Offset from last price used for trend-following entries, mirroring the
// passive entry/exit ladder anchors.
const trendEntryOffset = 0.005

// SelectRegime maps the latest close and indicator snapshot to a regime:
// close below the lower band is a reversion entry, close above the moving
// average rides the trend, anything in between stays flat.
func SelectRegime(lastClose float64, ind Indicators) Regime {
	switch {
	case lastClose < ind.LowerBand:
		return RegimeRangeReversion
	case lastClose > ind.SMA:
		return RegimeTrendFollowing
	default:
		return RegimeNoTrade
	}
}

// EntryPrices returns the buy and sell reference prices for a regime. Range
// reversion anchors on the band edges; trend following ladders a fixed
// offset off the last price. An unmapped regime is an invariant violation
// and fails loudly rather than producing a zero price.
func EntryPrices(regime Regime, lastClose float64, ind Indicators) (buyRef, sellRef float64, err error) {
	switch regime {
	case RegimeRangeReversion:
		return ind.LowerBand, ind.UpperBand, nil
	case RegimeTrendFollowing:
		return lastClose * (1 - trendEntryOffset), lastClose * (1 + trendEntryOffset), nil
	default:
		return 0, 0, fmt.Errorf("no entry price rule for regime %q", regime)
	}
}
