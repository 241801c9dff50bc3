package totals_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/procura/internal/totals"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixture() []totals.Line {
	return []totals.Line{
		{Section: "Фундаменты", Quantity: d("12.5"), UnitPrice: d("5400.10")},
		{Section: "Каркас", Quantity: d("3"), UnitPrice: d("0.1")},
		{Section: "Фундаменты", Quantity: d("2"), UnitPrice: d("99.99"), Total: decimal.NewNullDecimal(d("200"))},
		{Section: "Каркас", Quantity: d("3"), UnitPrice: d("0.2")},
	}
}

func TestRow(t *testing.T) {
	type testCase struct {
		name string
		line totals.Line
		want string
	}

	tests := []testCase{
		{name: "Computed", line: totals.Line{Quantity: d("12.5"), UnitPrice: d("5400.10")}, want: "67501.25"},
		{name: "BackendTotalWins", line: totals.Line{Quantity: d("2"), UnitPrice: d("99.99"), Total: decimal.NewNullDecimal(d("200"))}, want: "200"},
		{name: "NoFloatDrift", line: totals.Line{Quantity: d("3"), UnitPrice: d("0.1")}, want: "0.3"},
		{name: "Zero", line: totals.Line{}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, d(tt.want).Equal(totals.Row(tt.line)), "got %s", totals.Row(tt.line))
		})
	}
}

func TestSections(t *testing.T) {
	got := totals.Sections(fixture())

	assert.Len(t, got, 2)
	assert.Equal(t, "Фундаменты", got[0].Name)
	assert.Equal(t, 2, got[0].Lines)
	assert.True(t, d("67701.25").Equal(got[0].Subtotal))
	assert.Equal(t, "Каркас", got[1].Name)
	assert.True(t, d("0.9").Equal(got[1].Subtotal))
}

func TestGrand_Idempotent(t *testing.T) {
	lines := fixture()

	first := totals.Grand(lines)
	second := totals.Grand(lines)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.String(), second.String())
	assert.True(t, d("67702.15").Equal(first))
}

func TestGrand_Empty(t *testing.T) {
	assert.True(t, totals.Grand(nil).IsZero())
}

func TestFormat(t *testing.T) {
	type testCase struct {
		in   string
		want string
	}

	tests := []testCase{
		{in: "0", want: "0,00"},
		{in: "999.999", want: "1 000,00"},
		{in: "1234567.891", want: "1 234 567,89"},
		{in: "0.005", want: "0,01"},
		{in: "-4500.5", want: "-4 500,50"},
		{in: "100", want: "100,00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, totals.Format(d(tt.in)))
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "12,5", totals.FormatQuantity(d("12.500")))
	assert.Equal(t, "3", totals.FormatQuantity(d("3")))
}
