package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyCode is the shop currency (Tunisian dinar).
const CurrencyCode = "TND"

// FormatPrice formats amount with two decimals, thousand separators and the currency code.
func FormatPrice(amount decimal.Decimal) string {
	str := amount.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(str, ".")

	var result strings.Builder
	if amount.IsNegative() {
		result.WriteString("-")
	}
	length := len(intPart)
	for i, digit := range intPart {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + "." + fracPart + " " + CurrencyCode
}
