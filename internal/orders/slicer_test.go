package orders

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"spot-trader/internal/binance"
)

// fakeVenue captures limit order submissions with optional per-chunk failures
type fakeVenue struct {
	binance.Exchange
	placed   []binance.Order
	failIds  map[int]bool // fail the nth submission attempt
	attempts int
	nextId   int64
}

func (f *fakeVenue) PlaceLimitOrder(ctx context.Context, symbol, side string, qty, price float64, clientOrderId string) (*binance.Order, error) {
	attempt := f.attempts
	f.attempts++
	if f.failIds[attempt] {
		return nil, &binance.APIError{Code: -2010, Msg: "insufficient balance"}
	}
	f.nextId++
	order := binance.Order{
		Symbol: symbol, OrderId: f.nextId, ClientOrderId: clientOrderId,
		Side: side, OrigQty: qty, Price: price, Status: "NEW", Type: binance.OrderTypeLimit,
	}
	f.placed = append(f.placed, order)
	return &order, nil
}

// fixedLimits is a LimitsProvider with static bounds
type fixedLimits struct {
	limits binance.MarketLimits
	err    error
}

func (f fixedLimits) MarketLimits(ctx context.Context, symbol string) (binance.MarketLimits, error) {
	return f.limits, f.err
}

func newTestSlicer(venue *fakeVenue, limits binance.MarketLimits) (*Slicer, *int) {
	s := NewSlicer(venue, fixedLimits{limits: limits}, nil, SlicerConfig{
		Chunks:       5,
		StepFraction: 0.001,
		PaceDelay:    time.Second,
	}, zerolog.Nop())

	sleeps := 0
	s.sleep = func(time.Duration) { sleeps++ }
	return s, &sleeps
}

// TestRouteReferenceScenario pins the ladder: total 10, 5 chunks, step 0.1%,
// ref 100, buy -> prices [100, 99.9, 99.8, 99.7, 99.6], each chunk qty 2
func TestRouteReferenceScenario(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	placed, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 100, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(placed) != 5 {
		t.Fatalf("placed %d chunks, want 5", len(placed))
	}

	wantPrices := []float64{100, 99.9, 99.8, 99.7, 99.6}
	for i, order := range placed {
		if math.Abs(order.Price-wantPrices[i]) > 1e-9 {
			t.Errorf("chunk %d price = %v, want %v", i, order.Price, wantPrices[i])
		}
		if order.OrigQty != 2 {
			t.Errorf("chunk %d qty = %v, want 2", i, order.OrigQty)
		}
	}
}

// TestRouteBuyPricesNeverImprove tests that buy chunks stay at or below the
// reference and are monotonically non-increasing
func TestRouteBuyPricesNeverImprove(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	placed, _ := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 250, 1e9)
	prev := math.Inf(1)
	for i, order := range placed {
		if order.Price > 250 {
			t.Errorf("buy chunk %d priced %v above reference", i, order.Price)
		}
		if order.Price > prev {
			t.Errorf("buy chunk %d price %v improved on previous %v", i, order.Price, prev)
		}
		prev = order.Price
	}
}

// TestRouteSellPricesWalkUp tests the mirrored ladder for sells
func TestRouteSellPricesWalkUp(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	placed, err := s.Route(context.Background(), "DOGEUSDT", binance.SideSell, 10, 100, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prev := 0.0
	for i, order := range placed {
		if order.Price < 100 {
			t.Errorf("sell chunk %d priced %v below reference", i, order.Price)
		}
		if order.Price < prev {
			t.Errorf("sell chunk %d price %v improved on previous %v", i, order.Price, prev)
		}
		prev = order.Price
	}
}

// TestRouteSumNeverExceedsTotal tests that clamping only reduces
func TestRouteSumNeverExceedsTotal(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1.5})

	placed, _ := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 100, 1e9)

	sum := 0.0
	for _, order := range placed {
		sum += order.OrigQty
		if order.OrigQty > 1.5 {
			t.Errorf("chunk qty %v violates venue max 1.5", order.OrigQty)
		}
	}
	if sum > 10 {
		t.Errorf("placed quantity sum %v exceeds requested total 10", sum)
	}
}

// TestRouteSkipsUnaffordableChunks tests the affordability clamp: quote
// balance covers roughly two and a half chunks, the rest are skipped or
// reduced, never oversubmitted
func TestRouteSkipsUnaffordableChunks(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	// 5 chunks of 2 @ ~100 cost ~200 each; 500 funds only ~2.5 chunks
	placed, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 100, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cost := 0.0
	for _, order := range placed {
		cost += order.OrigQty * order.Price
	}
	if cost > 500+1e-9 {
		t.Errorf("placed orders cost %v, exceeding the available 500", cost)
	}
	if len(placed) == 0 {
		t.Error("expected at least the affordable chunks to be placed")
	}
}

// TestRouteBelowMinimumSkipped tests that a chunk under the venue minimum is
// skipped rather than bumped up
func TestRouteBelowMinimumSkipped(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 5, MaxQty: 1000})

	placed, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 100, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(placed) != 0 {
		t.Errorf("chunks of 2 under minimum 5 must all be skipped, placed %d", len(placed))
	}
}

// TestRouteChunkFailureIsolated tests that one rejected chunk does not abort
// the remaining chunks
func TestRouteChunkFailureIsolated(t *testing.T) {
	venue := &fakeVenue{failIds: map[int]bool{1: true, 2: true}}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	placed, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 100, 1e9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(placed) != 3 {
		t.Errorf("placed %d chunks with 2 rejections out of 5, want 3", len(placed))
	}
	if venue.attempts != 5 {
		t.Errorf("attempted %d submissions, want all 5", venue.attempts)
	}
}

// TestRoutePacesBetweenChunks tests the pacing delay count
func TestRoutePacesBetweenChunks(t *testing.T) {
	venue := &fakeVenue{}
	s, sleeps := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	if _, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 100, 1e9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *sleeps != 4 {
		t.Errorf("slept %d times between 5 chunks, want 4", *sleeps)
	}
}

// TestRouteRejectsDegenerateInput tests the route-level guards
func TestRouteRejectsDegenerateInput(t *testing.T) {
	venue := &fakeVenue{}
	s, _ := newTestSlicer(venue, binance.MarketLimits{MinQty: 0.01, MaxQty: 1000})

	if _, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 0, 100, 1e9); err == nil {
		t.Error("zero total quantity must be rejected")
	}
	if _, err := s.Route(context.Background(), "DOGEUSDT", binance.SideBuy, 10, 0, 1e9); err == nil {
		t.Error("zero reference price must be rejected")
	}
	if venue.attempts != 0 {
		t.Errorf("degenerate input reached the venue %d times", venue.attempts)
	}
}
