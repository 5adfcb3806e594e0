// Package numparse converts exchange-supplied decimal strings into floats.
//
// The exchange returns every numeric field as a string and the formatting is
// not consistent: plain decimals, grouped thousands, and occasionally
// currency-prefixed values all appear. Parsing is best effort and never
// fails: a string that survives none of the stages yields 0.0, so a single
// malformed field cannot break response decoding. The cost is that a zero
// cannot be told apart from a parse failure.
package numparse

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// currency markers stripped before the last parse attempt
const currencyRunes = "$€£¥₽"

// Float parses s as a decimal number, returning 0.0 if no stage succeeds.
func Float(s string) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if v, ok := parseGrouped(s); ok {
		return v
	}
	if v, ok := parseCurrency(s); ok {
		return v
	}
	return 0.0
}

// parseGrouped handles locale-formatted numbers with grouping separators,
// e.g. "1,234.56", "1 234,56" or "1.234,56".
func parseGrouped(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// both present: the rightmost one is the decimal separator
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			// repeated commas can only be grouping
			s = strings.ReplaceAll(s, ",", "")
		} else if len(s)-lastComma-1 == 3 {
			// a single comma with exactly three trailing digits is grouping
			s = strings.Replace(s, ",", "", 1)
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v, _ := d.Float64()
	if neg {
		v = -v
	}
	return v, true
}

// parseCurrency strips currency symbols and retries the grouped parse,
// e.g. "$1,234.56" or "0.0042 BTC".
func parseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, currencyRunes)
	// trailing alphabetic currency codes like "BTC" or "usd"
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	return parseGrouped(s)
}
