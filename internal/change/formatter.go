package change

import (
	"fmt"
	"strings"
)

// DefaultSymbol is the currency sign appended to every formatted value.
const DefaultSymbol = "฿"

// FormatChange is Format with the default currency symbol.
func FormatChange(b Breakdown) string {
	return Format(b, DefaultSymbol)
}

// Format renders b as "2x 100฿, 1x 5฿": banknotes before coins, each largest
// first. An empty breakdown renders as "0฿".
func Format(b Breakdown, symbol string) string {
	parts := make([]string, 0, len(b.Banknotes)+len(b.Coins))
	parts = appendCounts(parts, b.Banknotes, symbol)
	parts = appendCounts(parts, b.Coins, symbol)

	if len(parts) == 0 {
		return "0" + symbol
	}
	return strings.Join(parts, ", ")
}

func appendCounts(parts []string, c Counts, symbol string) []string {
	for _, v := range c.Descending() {
		if c[v] <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%dx %s%s", c[v], v, symbol))
	}
	return parts
}
