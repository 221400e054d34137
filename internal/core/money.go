package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount in Brazilian locale: "R$ 1.234,56".
// Negative amounts keep the sign before the currency symbol: "-R$ 10,00".
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2) // "1234.56"
	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	// Group the integer part with '.' thousands separators.
	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), fracPart)
}

// ParseBRL parses a currency string back into a decimal amount. It accepts the
// Brazilian locale produced by FormatBRL ("R$ 1.234,56"), plain locale-free
// numbers ("1234.56") and comma-decimal input without grouping ("1234,56").
func ParseBRL(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "R$", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty currency string")
	}

	if strings.Contains(cleaned, ",") {
		// Brazilian format: '.' groups thousands, ',' is the decimal mark.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency value %q: %w", s, err)
	}
	return d, nil
}
