package binance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for the venue failure kinds the engine distinguishes.
// Everything else coming back from the API is wrapped as a generic APIError.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidOrder      = errors.New("invalid order parameters")
	ErrSymbolNotFound    = errors.New("symbol not found")
)

// APIError is a structured error payload returned by the Binance REST API.
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Msg)
}

// Unwrap maps well-known Binance error codes onto the sentinel errors so
// callers can use errors.Is without caring about numeric codes.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case -2010: // NEW_ORDER_REJECTED (insufficient balance)
		return ErrInsufficientFunds
	case -1013, -1100, -1111, -1121, -2011:
		// filter failure, illegal chars, bad precision, bad symbol, cancel rejected
		return ErrInvalidOrder
	default:
		return nil
	}
}

// apiError parses an error response body into an APIError. Bodies that are
// not the standard {"code":..,"msg":..} shape are wrapped verbatim.
func apiError(status int, body []byte) error {
	var e APIError
	if err := json.Unmarshal(body, &e); err == nil && e.Code != 0 {
		return &e
	}
	return fmt.Errorf("API error (HTTP %d): %s", status, string(body))
}

// IsTransient reports whether err looks like a transient network failure
// (timeout, refused connection, DNS hiccup) rather than a venue rejection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
