package exchange

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minSignificantDigits = 2
	maxSignificantDigits = 12
)

// formatAmount renders a price or quantity for a POST body with at least 2
// and at most 12 significant digits, always in plain decimal notation.
func formatAmount(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsZero() {
		return "0.0"
	}

	f, _ := d.Abs().Float64()
	magnitude := int32(math.Floor(math.Log10(f)))
	d = d.Round(int32(maxSignificantDigits-1) - magnitude)

	// Round rescales the exponent even when nothing was cut, so pad from the
	// trimmed representation, not the post-round exponent.
	s := d.String()
	if sig := significantDigits(d); sig < minSignificantDigits {
		if !strings.ContainsRune(s, '.') {
			s += "."
		}
		s += strings.Repeat("0", minSignificantDigits-sig)
	}
	return s
}

// isFinite reports whether v can be rendered as a plain decimal.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// significantDigits counts digits ignoring leading zeros and trailing zeros
// in the fractional part. Trailing zeros of the integer part count: "10"
// already has two significant digits and needs no decimal padding.
func significantDigits(d decimal.Decimal) int {
	s := d.Abs().String()
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimLeft(s, "0")
	return len(s)
}

// formatOrderID renders an order id for a POST body; the exchange expects
// lowercase uuids.
func formatOrderID(id uuid.UUID) string {
	return strings.ToLower(id.String())
}
