package strategy

import (
	"errors"
	"fmt"
	"math"

	"spot-trader/internal/binance"
)

// ErrInsufficientData is returned when a candle window is too short (or too
// malformed) for the requested lookback. Callers must treat it as "skip this
// symbol this cycle", never as zero volatility.
var ErrInsufficientData = errors.New("insufficient candle data")

// Indicators is the derived snapshot for the latest candle, recomputed every
// cycle and never persisted.
type Indicators struct {
	ATR       float64
	SMA       float64
	UpperBand float64
	LowerBand float64
	LastClose float64
}

// IndicatorConfig holds the lookback periods and band width
type IndicatorConfig struct {
	ATRPeriod      int
	BandPeriod     int
	BandMultiplier float64
}

// ComputeIndicators derives the per-cycle indicator snapshot from a candle
// window. The window must be ordered oldest first with strictly increasing
// close times.
func ComputeIndicators(klines []binance.Kline, cfg IndicatorConfig) (Indicators, error) {
	for i := 1; i < len(klines); i++ {
		if klines[i].CloseTime <= klines[i-1].CloseTime {
			return Indicators{}, fmt.Errorf("disordered candle window at index %d: %w", i, ErrInsufficientData)
		}
	}

	atr, err := ATR(klines, cfg.ATRPeriod)
	if err != nil {
		return Indicators{}, err
	}
	sma, err := SMA(klines, cfg.BandPeriod)
	if err != nil {
		return Indicators{}, err
	}
	upper, lower, err := BollingerBands(klines, cfg.BandPeriod, cfg.BandMultiplier)
	if err != nil {
		return Indicators{}, err
	}

	return Indicators{
		ATR:       atr,
		SMA:       sma,
		UpperBand: upper,
		LowerBand: lower,
		LastClose: klines[len(klines)-1].Close,
	}, nil
}

// SMA calculates the Simple Moving Average of closes
func SMA(klines []binance.Kline, period int) (float64, error) {
	if period <= 0 || len(klines) < period {
		return 0, fmt.Errorf("SMA(%d) over %d candles: %w", period, len(klines), ErrInsufficientData)
	}

	sum := 0.0
	for i := len(klines) - period; i < len(klines); i++ {
		sum += klines[i].Close
	}

	return sum / float64(period), nil
}

// BollingerBands calculates the upper and lower bands around the SMA
func BollingerBands(klines []binance.Kline, period int, multiplier float64) (upper, lower float64, err error) {
	middle, err := SMA(klines, period)
	if err != nil {
		return 0, 0, err
	}

	variance := 0.0
	for i := len(klines) - period; i < len(klines); i++ {
		diff := klines[i].Close - middle
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(period))

	return middle + stdDev*multiplier, middle - stdDev*multiplier, nil
}

// ATR calculates the Average True Range over the trailing period. Needs
// period+1 candles because the true range references the previous close.
func ATR(klines []binance.Kline, period int) (float64, error) {
	if period <= 0 || len(klines) < period+1 {
		return 0, fmt.Errorf("ATR(%d) over %d candles: %w", period, len(klines), ErrInsufficientData)
	}

	trSum := 0.0
	for i := len(klines) - period; i < len(klines); i++ {
		high := klines[i].High
		low := klines[i].Low
		prevClose := klines[i-1].Close

		tr := math.Max(
			high-low,
			math.Max(
				math.Abs(high-prevClose),
				math.Abs(low-prevClose),
			),
		)

		trSum += tr
	}

	return trSum / float64(period), nil
}
