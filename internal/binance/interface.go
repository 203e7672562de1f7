package binance

import "context"

// Order sides and kinds as the venue spells them
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeLimit     = "LIMIT"
	OrderTypeMarket    = "MARKET"
	OrderTypeStopLimit = "STOP_LOSS_LIMIT"
)

// Exchange defines the venue operations the engine depends on
type Exchange interface {
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error)
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetBalances(ctx context.Context) (map[string]float64, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]Order, error)
	GetMarketLimits(ctx context.Context, symbol string) (MarketLimits, error)
	PlaceLimitOrder(ctx context.Context, symbol, side string, quantity, price float64, clientOrderId string) (*Order, error)
	PlaceMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*Order, error)
	PlaceStopLimitOrder(ctx context.Context, symbol, side string, quantity, stopPrice float64) (*Order, error)
	CancelOrder(ctx context.Context, symbol string, orderId int64) error
}

// Ensure both Client and MockClient implement Exchange
var _ Exchange = (*Client)(nil)
var _ Exchange = (*MockClient)(nil)
