package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCurrency is used when a package does not name one.
const DefaultCurrency = "INR"

// MaxPriceMinor caps a package price at 100,000,000.00 so cart totals stay
// far from int64 overflow. Keep in sync with the Package.PriceMinor tag.
const MaxPriceMinor int64 = 10_000_000_000

// FormatAmount renders minor units as a two-decimal string, e.g. 199900 -> "1999.00".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ParseAmount parses a decimal string with at most two fraction digits into minor units.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if w > MaxPriceMinor/100 {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	minor := w*100 + f
	if neg {
		minor = -minor
	}
	return minor, nil
}
