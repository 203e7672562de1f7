package binance

import (
	"errors"
	"fmt"
	"testing"
)

// TestAPIErrorClassification tests the mapping from Binance error codes to sentinel errors
func TestAPIErrorClassification(t *testing.T) {
	insufficient := apiError(400, []byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	if !errors.Is(insufficient, ErrInsufficientFunds) {
		t.Errorf("code -2010 should map to ErrInsufficientFunds, got %v", insufficient)
	}
	if errors.Is(insufficient, ErrInvalidOrder) {
		t.Error("code -2010 should not map to ErrInvalidOrder")
	}

	for _, code := range []int{-1013, -1100, -1111, -1121, -2011} {
		err := apiError(400, []byte(fmt.Sprintf(`{"code":%d,"msg":"rejected"}`, code)))
		if !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("code %d should map to ErrInvalidOrder, got %v", code, err)
		}
	}

	// Unknown codes stay generic
	unknown := apiError(400, []byte(`{"code":-9999,"msg":"something else"}`))
	if errors.Is(unknown, ErrInsufficientFunds) || errors.Is(unknown, ErrInvalidOrder) {
		t.Errorf("unknown code should not match any sentinel, got %v", unknown)
	}
}

// TestAPIErrorWrappedThroughCallSites tests that wrapping preserves classification
func TestAPIErrorWrappedThroughCallSites(t *testing.T) {
	base := apiError(400, []byte(`{"code":-2010,"msg":"no balance"}`))
	wrapped := fmt.Errorf("error placing order: %w", base)

	if !errors.Is(wrapped, ErrInsufficientFunds) {
		t.Error("wrapped venue rejection should still match ErrInsufficientFunds")
	}
}

// TestAPIErrorNonStandardBody tests fallback for unparseable error bodies
func TestAPIErrorNonStandardBody(t *testing.T) {
	err := apiError(502, []byte("Bad Gateway"))
	if err == nil {
		t.Fatal("expected an error for non-200 response")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("non-JSON body should not produce a structured APIError")
	}
}

// TestIsTransient tests transient network error detection
func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
	if IsTransient(apiError(400, []byte(`{"code":-2010,"msg":"no balance"}`))) {
		t.Error("venue rejection is not transient")
	}
	if !IsTransient(&timeoutError{}) {
		t.Error("a net.Error timeout should be transient")
	}
}

// timeoutError implements net.Error for the transient classification test
type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
