package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, secretKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Kline represents a candlestick
type Kline struct {
	OpenTime  int64   `json:"openTime"`
	Open      float64 `json:"open,string"`
	High      float64 `json:"high,string"`
	Low       float64 `json:"low,string"`
	Close     float64 `json:"close,string"`
	Volume    float64 `json:"volume,string"`
	CloseTime int64   `json:"closeTime"`
}

// Order represents an order acknowledged by the exchange. The same shape is
// returned by order placement and by the open-orders listing.
type Order struct {
	Symbol        string  `json:"symbol"`
	OrderId       int64   `json:"orderId"`
	ClientOrderId string  `json:"clientOrderId"`
	TransactTime  int64   `json:"transactTime"`
	Price         float64 `json:"price,string"`
	OrigQty       float64 `json:"origQty,string"`
	ExecutedQty   float64 `json:"executedQty,string"`
	Status        string  `json:"status"`
	Type          string  `json:"type"`
	Side          string  `json:"side"`
}

// MarketLimits holds the tradable quantity bounds reported by the venue for
// one symbol (LOT_SIZE filter).
type MarketLimits struct {
	MinQty float64
	MaxQty float64
	Step   float64
}

// GetKlines fetches candlestick data
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v3/klines", params)
	if err != nil {
		return nil, fmt.Errorf("error fetching klines: %w", err)
	}

	var rawKlines [][]interface{}
	if err := json.Unmarshal(body, &rawKlines); err != nil {
		return nil, fmt.Errorf("error parsing klines: %w", err)
	}

	klines := make([]Kline, len(rawKlines))
	for i, raw := range rawKlines {
		klines[i] = Kline{
			OpenTime:  int64(raw[0].(float64)),
			Open:      parseFloat(raw[1]),
			High:      parseFloat(raw[2]),
			Low:       parseFloat(raw[3]),
			Close:     parseFloat(raw[4]),
			Volume:    parseFloat(raw[5]),
			CloseTime: int64(raw[6].(float64)),
		}
	}

	return klines, nil
}

// GetPrice fetches the latest traded price for a symbol
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "/api/v3/ticker/price", params)
	if err != nil {
		return 0, fmt.Errorf("error fetching price: %w", err)
	}

	var priceResp struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price,string"`
	}
	if err := json.Unmarshal(body, &priceResp); err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}

	return priceResp.Price, nil
}

// GetBalances fetches the free balance per asset from the account endpoint
func (c *Client) GetBalances(ctx context.Context) (map[string]float64, error) {
	body, err := c.signedRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("error fetching balances: %w", err)
	}

	var account struct {
		Balances []struct {
			Asset string  `json:"asset"`
			Free  float64 `json:"free,string"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("error parsing account: %w", err)
	}

	balances := make(map[string]float64, len(account.Balances))
	for _, b := range account.Balances {
		balances[b.Asset] = b.Free
	}

	return balances, nil
}

// GetOpenOrders fetches all open orders for a symbol
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.signedRequest(ctx, http.MethodGet, "/api/v3/openOrders", params)
	if err != nil {
		return nil, fmt.Errorf("error fetching open orders: %w", err)
	}

	var orders []Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("error parsing open orders: %w", err)
	}

	return orders, nil
}

// GetMarketLimits fetches the LOT_SIZE quantity bounds for a symbol
func (c *Client) GetMarketLimits(ctx context.Context, symbol string) (MarketLimits, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "/api/v3/exchangeInfo", params)
	if err != nil {
		return MarketLimits{}, fmt.Errorf("error fetching exchange info: %w", err)
	}

	var info struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Filters []struct {
				FilterType string  `json:"filterType"`
				MinQty     float64 `json:"minQty,string"`
				MaxQty     float64 `json:"maxQty,string"`
				StepSize   float64 `json:"stepSize,string"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return MarketLimits{}, fmt.Errorf("error parsing exchange info: %w", err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		for _, f := range s.Filters {
			if f.FilterType == "LOT_SIZE" {
				return MarketLimits{MinQty: f.MinQty, MaxQty: f.MaxQty, Step: f.StepSize}, nil
			}
		}
	}

	return MarketLimits{}, fmt.Errorf("limits for %s: %w", symbol, ErrSymbolNotFound)
}

// PlaceLimitOrder places a GTC limit order
func (c *Client) PlaceLimitOrder(ctx context.Context, symbol, side string, quantity, price float64, clientOrderId string) (*Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "LIMIT")
	params.Set("timeInForce", "GTC")
	params.Set("quantity", formatQty(quantity))
	params.Set("price", formatPrice(price))
	if clientOrderId != "" {
		params.Set("newClientOrderId", clientOrderId)
	}
	return c.placeOrder(ctx, params)
}

// PlaceMarketOrder places a market order
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", formatQty(quantity))
	return c.placeOrder(ctx, params)
}

// PlaceStopLimitOrder places a STOP_LOSS_LIMIT order with the limit price set
// at the stop price
func (c *Client) PlaceStopLimitOrder(ctx context.Context, symbol, side string, quantity, stopPrice float64) (*Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "STOP_LOSS_LIMIT")
	params.Set("timeInForce", "GTC")
	params.Set("quantity", formatQty(quantity))
	params.Set("price", formatPrice(stopPrice))
	params.Set("stopPrice", formatPrice(stopPrice))
	return c.placeOrder(ctx, params)
}

func (c *Client) placeOrder(ctx context.Context, params url.Values) (*Order, error) {
	body, err := c.signedRequest(ctx, http.MethodPost, "/api/v3/order", params)
	if err != nil {
		return nil, fmt.Errorf("error placing order: %w", err)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("error parsing order response: %w", err)
	}

	return &order, nil
}

// CancelOrder cancels an existing order
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderId int64) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderId, 10))

	if _, err := c.signedRequest(ctx, http.MethodDelete, "/api/v3/order", params); err != nil {
		return fmt.Errorf("error canceling order: %w", err)
	}
	return nil
}

// get performs an unsigned GET request against a public endpoint
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// signedRequest performs an authenticated request with an HMAC-SHA256
// signature over the encoded query string
func (c *Client) signedRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()
	query += "&signature=" + c.sign(query)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = query
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	return body, nil
}

// sign creates a signature for authenticated requests
func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', 8, 64)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 8, 64)
}

func parseFloat(val interface{}) float64 {
	switch v := val.(type) {
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case float64:
		return v
	default:
		return 0
	}
}
