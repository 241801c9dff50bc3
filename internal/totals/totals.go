// Package totals computes display totals of document lines. Authoritative
// totals come from the backend; these are recomputed from the loaded lines on
// every render and never sent back.
package totals

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the precision money is rounded to for display (kopecks).
const DisplayPlaces = 2

type Line struct {
	Section   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.NullDecimal // as returned by the backend, if any
}

// Liner is implemented by item types that can be totalled.
type Liner interface {
	Line() Line
}

func Of[T Liner](items []T) []Line {
	out := make([]Line, len(items))
	for i, it := range items {
		out[i] = it.Line()
	}

	return out
}

// Row is the backend total when present, otherwise quantity × unit price.
func Row(l Line) decimal.Decimal {
	if l.Total.Valid {
		return l.Total.Decimal
	}

	return l.Quantity.Mul(l.UnitPrice)
}

type Section struct {
	Name     string
	Lines    int
	Subtotal decimal.Decimal
}

// Sections groups lines by section in first-seen order.
func Sections(lines []Line) []Section {
	var out []Section

	index := make(map[string]int)

	for _, l := range lines {
		i, ok := index[l.Section]
		if !ok {
			i = len(out)
			index[l.Section] = i
			out = append(out, Section{Name: l.Section, Subtotal: decimal.Zero})
		}

		out[i].Lines++
		out[i].Subtotal = out[i].Subtotal.Add(Row(l))
	}

	return out
}

func Grand(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(Row(l))
	}

	return sum
}

// Format renders an amount as "1 234 567,89": rounded half away from zero to
// DisplayPlaces, space-grouped thousands, comma decimal separator.
func Format(d decimal.Decimal) string {
	s := d.StringFixed(DisplayPlaces)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder

	if neg {
		b.WriteByte('-')
	}

	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(' ')
		}

		b.WriteRune(r)
	}

	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}

	return b.String()
}

// FormatQuantity trims trailing zeros: 12.500 → "12,5".
func FormatQuantity(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}
