package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyCode prefixes every formatted amount.
const CurrencyCode = "KES"

// FormatCurrency renders the absolute value of d with two decimals and comma
// grouping, e.g. "KES 1,234.50".
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(CurrencyCode)
	b.WriteByte(' ')
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
