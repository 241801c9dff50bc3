package sheet

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumber reads numbers as Russian spreadsheets write them, with space
// or no-break space thousands and a decimal comma, as well as plain "1234.56".
func parseNumber(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}

		return r
	}, s)

	clean = strings.TrimSuffix(clean, "руб.")

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	return decimal.NewFromString(clean)
}
