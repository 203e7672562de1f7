package binance

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockClient simulates the venue for development and mock mode: random-walk
// prices, synthetic candles, a balance ledger and a resting order book.
type MockClient struct {
	mu         sync.RWMutex
	prices     map[string]float64
	balances   map[string]float64
	openOrders map[string][]Order
	nextId     int64
	lastUpdate time.Time
	rng        *rand.Rand
}

// NewMockClient creates a simulated venue seeded with realistic prices and a
// starting quote balance
func NewMockClient() *MockClient {
	return &MockClient{
		prices: map[string]float64{
			"SHIBUSDT": 0.0000135,
			"DOGEUSDT": 0.40,
			"TRXUSDT":  0.16,
			"BTCUSDT":  104500.00,
			"ETHUSDT":  3900.00,
		},
		balances: map[string]float64{
			"USDT": 10000.00,
		},
		openOrders: make(map[string][]Order),
		nextId:     1,
		lastUpdate: time.Now(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// updatePrices adds small random variations to simulate market movement
func (mc *MockClient) updatePrices() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if time.Since(mc.lastUpdate) < time.Second {
		return
	}

	for symbol, price := range mc.prices {
		// Random walk: -0.5% to +0.5% change
		change := (mc.rng.Float64() - 0.5) * 0.01
		mc.prices[symbol] = price * (1 + change)
	}
	mc.lastUpdate = time.Now()
}

func (mc *MockClient) basePrice(symbol string) float64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if p, ok := mc.prices[symbol]; ok {
		return p
	}
	return 100.0
}

// GetKlines returns simulated candlestick data
func (mc *MockClient) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	mc.updatePrices()
	base := mc.basePrice(symbol)

	var step time.Duration
	switch interval {
	case "1m":
		step = time.Minute
	case "5m":
		step = 5 * time.Minute
	case "15m":
		step = 15 * time.Minute
	case "4h":
		step = 4 * time.Hour
	case "1d":
		step = 24 * time.Hour
	default:
		step = time.Hour
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	klines := make([]Kline, limit)
	price := base
	for i := limit - 1; i >= 0; i-- {
		openTime := now.Add(-time.Duration(i+1) * step)
		change := (mc.rng.Float64() - 0.5) * 0.01
		open := price
		close := price * (1 + change)
		high := open * (1 + mc.rng.Float64()*0.005)
		low := open * (1 - mc.rng.Float64()*0.005)
		if close > high {
			high = close
		}
		if close < low {
			low = close
		}
		klines[limit-1-i] = Kline{
			OpenTime:  openTime.UnixMilli(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + mc.rng.Float64()*9000,
			CloseTime: openTime.Add(step).UnixMilli() - 1,
		}
		price = close
	}

	return klines, nil
}

// GetPrice returns the simulated last price
func (mc *MockClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	mc.updatePrices()
	return mc.basePrice(symbol), nil
}

// GetBalances returns a copy of the simulated balance ledger
func (mc *MockClient) GetBalances(ctx context.Context) (map[string]float64, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make(map[string]float64, len(mc.balances))
	for asset, free := range mc.balances {
		out[asset] = free
	}
	return out, nil
}

// GetOpenOrders returns the resting orders for a symbol
func (mc *MockClient) GetOpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	orders := mc.openOrders[symbol]
	out := make([]Order, len(orders))
	copy(out, orders)
	return out, nil
}

// GetMarketLimits returns fixed lot-size bounds wide enough for simulation
func (mc *MockClient) GetMarketLimits(ctx context.Context, symbol string) (MarketLimits, error) {
	return MarketLimits{MinQty: 0.0001, MaxQty: 10000000, Step: 0.0001}, nil
}

// PlaceLimitOrder records a resting limit order, debiting the quote balance
// for buys so affordability stays realistic across a routing sequence
func (mc *MockClient) PlaceLimitOrder(ctx context.Context, symbol, side string, quantity, price float64, clientOrderId string) (*Order, error) {
	if quantity <= 0 || price <= 0 {
		return nil, &APIError{Code: -1013, Msg: "Invalid quantity or price"}
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if side == SideBuy {
		quote := quoteAsset(symbol)
		cost := quantity * price
		if mc.balances[quote] < cost {
			return nil, &APIError{Code: -2010, Msg: "Account has insufficient balance for requested action."}
		}
		mc.balances[quote] -= cost
	}

	if clientOrderId == "" {
		clientOrderId = uuid.NewString()
	}

	order := Order{
		Symbol:        symbol,
		OrderId:       mc.nextId,
		ClientOrderId: clientOrderId,
		TransactTime:  time.Now().UnixMilli(),
		Price:         price,
		OrigQty:       quantity,
		Status:        "NEW",
		Type:          OrderTypeLimit,
		Side:          side,
	}
	mc.nextId++
	mc.openOrders[symbol] = append(mc.openOrders[symbol], order)

	return &order, nil
}

// PlaceMarketOrder fills immediately at the simulated last price
func (mc *MockClient) PlaceMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*Order, error) {
	if quantity <= 0 {
		return nil, &APIError{Code: -1013, Msg: "Invalid quantity"}
	}
	price := mc.basePrice(symbol)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	order := Order{
		Symbol:        symbol,
		OrderId:       mc.nextId,
		ClientOrderId: uuid.NewString(),
		TransactTime:  time.Now().UnixMilli(),
		Price:         price,
		OrigQty:       quantity,
		ExecutedQty:   quantity,
		Status:        "FILLED",
		Type:          OrderTypeMarket,
		Side:          side,
	}
	mc.nextId++

	return &order, nil
}

// PlaceStopLimitOrder records a protective stop order; the simulation keeps
// it resting like a limit order
func (mc *MockClient) PlaceStopLimitOrder(ctx context.Context, symbol, side string, quantity, stopPrice float64) (*Order, error) {
	order, err := mc.PlaceLimitOrder(ctx, symbol, side, quantity, stopPrice, "")
	if err != nil {
		return nil, err
	}
	order.Type = OrderTypeStopLimit
	return order, nil
}

// CancelOrder removes a resting order, refunding the quote balance for buys
func (mc *MockClient) CancelOrder(ctx context.Context, symbol string, orderId int64) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	orders := mc.openOrders[symbol]
	for i, o := range orders {
		if o.OrderId == orderId {
			if o.Side == SideBuy {
				mc.balances[quoteAsset(symbol)] += o.OrigQty * o.Price
			}
			mc.openOrders[symbol] = append(orders[:i], orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cancel %d: %w", orderId, &APIError{Code: -2011, Msg: "Unknown order sent."})
}

// SetBalance overrides an asset balance, for tests and demos
func (mc *MockClient) SetBalance(asset string, free float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.balances[asset] = free
}

// quoteAsset extracts the quote asset from a concatenated symbol. Binance
// spot symbols have no separator, so match against the common quotes.
func quoteAsset(symbol string) string {
	for _, q := range []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB"} {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return q
		}
	}
	return "USDT"
}
