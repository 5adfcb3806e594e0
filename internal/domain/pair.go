// Package domain defines core data structures shared across the client.
package domain

import (
	"fmt"
	"strings"
)

// Currency a currency symbol, e.g. "BTC".
type Currency = string

// CurrencyPair a market identifier. Base is the pricing standard, Other is
// the asset priced against it; "BTC-XMR" is the market for XMR priced in BTC.
type CurrencyPair struct {
	// Base pricing currency symbol.
	Base Currency
	// Other traded currency symbol.
	Other Currency
}

// ParsePair parses the "BASE-OTHER" wire form. The last dash is the
// separator, so a dash inside the base symbol is tolerated. Returns false
// when the string does not split into two non-empty segments.
func ParsePair(s string) (CurrencyPair, bool) {
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return CurrencyPair{}, false
	}
	return CurrencyPair{Base: s[:i], Other: s[i+1:]}, true
}

// String returns the "BASE-OTHER" wire form.
func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s-%s", p.Base, p.Other)
}
