package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountToCents converts a decimal amount string (shillings) to cents.
// Rejects malformed and non-positive values.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %s", s)
	}
	return cents, nil
}

// FormatCents renders cents as a plain two-decimal string, e.g. "1833.33".
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// FormatCurrency renders cents as group currency with thousands separators,
// e.g. "KSh 36,000.00".
func FormatCurrency(cents int64) string {
	s := FormatCents(cents)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	var b strings.Builder
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := "KSh " + b.String() + "." + parts[1]
	if neg {
		out = "KSh -" + b.String() + "." + parts[1]
	}
	return out
}

// ParseID converts a URL path id to uint, rejecting non-positive values.
func ParseID(s string) (uint, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}
