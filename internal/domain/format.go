package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const displayDateLayout = "02/01/06"

// FormatDate renders a millisecond timestamp as dd/MM/yy. Unset dates render empty.
func FormatDate(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(displayDateLayout)
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseAmount parses a form amount. Malformed input yields zero rather than an error.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}
