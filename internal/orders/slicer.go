package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"spot-trader/internal/binance"
	"spot-trader/internal/events"
)

// LimitsProvider resolves the venue's tradable quantity bounds for a symbol.
// Satisfied by the cache wrapper, backed by the exchange client.
type LimitsProvider interface {
	MarketLimits(ctx context.Context, symbol string) (binance.MarketLimits, error)
}

// Slicer splits a target quantity into a ladder of limit orders walking away
// from the reference price, so entries lean passive instead of sweeping the
// book in one print.
type Slicer struct {
	exchange binance.Exchange
	limits   LimitsProvider
	bus      *events.Bus
	log      zerolog.Logger

	chunks       int
	stepFraction float64
	paceDelay    time.Duration
	sleep        func(time.Duration) // injectable for tests
}

// SlicerConfig holds the routing policy
type SlicerConfig struct {
	Chunks       int           // number of equal slices
	StepFraction float64       // per-chunk price step away from reference
	PaceDelay    time.Duration // wait between chunk submissions
}

// NewSlicer creates a smart order router
func NewSlicer(exchange binance.Exchange, limits LimitsProvider, bus *events.Bus, cfg SlicerConfig, logger zerolog.Logger) *Slicer {
	return &Slicer{
		exchange:     exchange,
		limits:       limits,
		bus:          bus,
		log:          logger.With().Str("component", "router").Logger(),
		chunks:       cfg.Chunks,
		stepFraction: cfg.StepFraction,
		paceDelay:    cfg.PaceDelay,
		sleep:        time.Sleep,
	}
}

// Route splits total into equal chunks and submits each as an independent
// limit order. Chunk i is priced i*stepFraction away from refPrice, lower for
// buys and higher for sells. Each chunk is clamped to the venue's lot-size
// bounds and to what available can still pay for (quote balance for buys,
// base balance for sells); a chunk clamped to nothing is skipped, and a
// chunk rejected by the venue is logged and skipped. Partial success is the
// normal case, not an error.
func (s *Slicer) Route(ctx context.Context, symbol, side string, total, refPrice, available float64) ([]binance.Order, error) {
	if s.chunks <= 0 {
		return nil, fmt.Errorf("slicer configured with %d chunks", s.chunks)
	}
	if total <= 0 || refPrice <= 0 {
		return nil, fmt.Errorf("route %s %s: non-positive quantity %v or price %v", side, symbol, total, refPrice)
	}

	limits, err := s.limits.MarketLimits(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", symbol, err)
	}

	chunkQty := total / float64(s.chunks)
	remaining := available
	var placed []binance.Order

	for i := 0; i < s.chunks; i++ {
		if i > 0 {
			s.sleep(s.paceDelay)
		}
		if err := ctx.Err(); err != nil {
			return placed, err
		}

		var price float64
		if side == binance.SideBuy {
			price = refPrice * (1 - float64(i)*s.stepFraction)
		} else {
			price = refPrice * (1 + float64(i)*s.stepFraction)
		}

		qty := s.clampQuantity(chunkQty, price, side, remaining, limits)
		if qty <= 0 {
			s.log.Debug().Str("symbol", symbol).Str("side", side).Int("chunk", i).
				Float64("price", price).Msg("chunk unaffordable or below lot minimum, skipping")
			continue
		}

		order, err := s.exchange.PlaceLimitOrder(ctx, symbol, side, qty, price, clientOrderId())
		if err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Str("side", side).Int("chunk", i).
				Float64("qty", qty).Float64("price", price).Msg("chunk placement failed")
			continue
		}

		placed = append(placed, *order)
		if side == binance.SideBuy {
			remaining -= qty * price
		} else {
			remaining -= qty
		}

		s.log.Info().Str("symbol", symbol).Str("side", side).Int("chunk", i).
			Float64("qty", qty).Float64("price", price).Int64("order_id", order.OrderId).
			Msg("chunk placed")
		if s.bus != nil {
			s.bus.Publish(events.Event{
				Type: events.EventOrderPlaced,
				Data: map[string]interface{}{
					"symbol":   symbol,
					"side":     side,
					"quantity": qty,
					"price":    price,
					"order_id": order.OrderId,
					"chunk":    i,
				},
			})
		}
	}

	return placed, nil
}

// clampQuantity bounds a chunk to the lot-size window and to the affordable
// amount. Clamping only ever reduces; anything ending below the venue
// minimum means the chunk cannot be placed at all.
func (s *Slicer) clampQuantity(qty, price float64, side string, remaining float64, limits binance.MarketLimits) float64 {
	affordable := remaining
	if side == binance.SideBuy {
		if price <= 0 {
			return 0
		}
		affordable = remaining / price
	}

	if qty > affordable {
		qty = affordable
	}
	if limits.MaxQty > 0 && qty > limits.MaxQty {
		qty = limits.MaxQty
	}
	if qty < limits.MinQty {
		return 0
	}
	return qty
}

func clientOrderId() string {
	return "st-" + uuid.NewString()[:18]
}
