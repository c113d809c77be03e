package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a currency amount for display: dollar sign, grouped
// thousands, two decimal places. Presentation only; never used in arithmetic.
func FormatPrice(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	whole, frac := parts[0], parts[1]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
		if len(whole) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(whole); i += 3 {
		b.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			b.WriteByte(',')
		}
	}

	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
