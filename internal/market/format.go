package market

import (
	"fmt"
	"strings"
)

// FormatCurrency renders a price with the right currency symbol and
// thousands separators.
func FormatCurrency(currency string, value float64) string {
	symbol := "$"
	if currency == "INR" {
		symbol = "₹"
	}
	return symbol + groupThousands(fmt.Sprintf("%.2f", value))
}

// FormatLargeNumber renders market caps and revenue figures in the
// unit readers of each market expect: trillions/billions everywhere,
// crores for mid-size INR figures.
func FormatLargeNumber(value float64, currency string) string {
	symbol := "$"
	if currency == "INR" {
		symbol = "₹"
	}

	switch {
	case value >= 1e12:
		return fmt.Sprintf("%s%.2fT", symbol, value/1e12)
	case value >= 1e9:
		return fmt.Sprintf("%s%.2fB", symbol, value/1e9)
	case value >= 1e7 && currency == "INR":
		return fmt.Sprintf("%s%.0fCr", symbol, value/1e7)
	case value >= 1e6:
		return fmt.Sprintf("%s%.2fM", symbol, value/1e6)
	}
	return symbol + groupThousands(fmt.Sprintf("%.0f", value))
}

// groupThousands inserts commas into the integer part of a formatted
// number.
func groupThousands(s string) string {
	intPart := s
	frac := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + frac
}
