package market

import (
	"fmt"
	"strings"
)

// Symbol identifies a trading pair by its base and quote assets.
type Symbol struct {
	Base  string
	Quote string
}

// ParseSymbol parses "SHIB/USDT" into a Symbol
func ParseSymbol(s string) (Symbol, error) {
	base, quote, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || base == "" || quote == "" {
		return Symbol{}, fmt.Errorf("invalid symbol %q, want BASE/QUOTE", s)
	}
	return Symbol{Base: strings.ToUpper(base), Quote: strings.ToUpper(quote)}, nil
}

// ParseSymbols parses a list of BASE/QUOTE pairs
func ParseSymbols(list []string) ([]Symbol, error) {
	symbols := make([]Symbol, 0, len(list))
	for _, s := range list {
		sym, err := ParseSymbol(s)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

// Pair returns the venue's concatenated spelling, e.g. SHIBUSDT
func (s Symbol) Pair() string {
	return s.Base + s.Quote
}

func (s Symbol) String() string {
	return s.Base + "/" + s.Quote
}
