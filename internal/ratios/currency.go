package ratios

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders d as dollars with thousands separators and two
// decimals, e.g. "$1,234.56" or "-$1,234.56".
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
