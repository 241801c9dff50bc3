package sheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/procura/internal/importer/sheet"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCSV_Estimate(t *testing.T) {
	csv := `Локальная смета № 12;;;;;
Объект: ЖК «Северный»;;;;;

Шифр;Наименование работ и затрат;Ед. изм.;Кол-во;Цена за ед.;Стоимость
1;2;3;4;5;6
Раздел 1. Кровля;;;;;
ФЕР12-01-015-01;Устройство мембраны ПВХ;м2;420;615,50;258 510,00
ФЕР12-01-013-03;Утеплитель минераловатный;м3;63,2;4 100,00;259 120,00
Итого по разделу 1;;;;;517 630,00
Раздел 2. Водосток;;;;;
ФССЦ-301-1234;Воронка кровельная;шт;6;2 350;14 100
`

	res, err := sheet.NewCSV().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "Смета", res.Profile)
	assert.Equal(t, 2, res.Skipped, "numbering row and section total")
	require.Len(t, res.Items, 3)

	first := res.Items[0]
	assert.Equal(t, "Раздел 1. Кровля", first.Section)
	assert.Equal(t, "ФЕР12-01-015-01", first.Code)
	assert.Equal(t, "Устройство мембраны ПВХ", first.Name)
	assert.Equal(t, "м2", first.Unit)
	assert.True(t, dec("420").Equal(first.Quantity))
	assert.True(t, dec("615.50").Equal(first.UnitPrice))

	assert.True(t, dec("63.2").Equal(res.Items[1].Quantity))
	assert.True(t, dec("4100").Equal(res.Items[1].UnitPrice))

	assert.Equal(t, "Раздел 2. Водосток", res.Items[2].Section)
}

func TestCSV_BOQWithoutPrices(t *testing.T) {
	csv := "Раздел,Наименование работ,Ед.изм.,Количество\n" +
		"Фундамент,Бетон B25,м3,\"1 234,5\"\n" +
		"Фундамент,Арматура А500,т,\"18,75\"\n"

	res, err := sheet.NewCSV().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "ВОР", res.Profile)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Фундамент", res.Items[0].Section)
	assert.True(t, dec("1234.5").Equal(res.Items[0].Quantity))
	assert.True(t, res.Items[0].UnitPrice.IsZero())
}

func TestCSV_Windows1251(t *testing.T) {
	csv := "Наименование;Ед. изм.;Количество\nКирпич керамический;тыс. шт;12,5\n"

	encoded, err := charmap.Windows1251.NewEncoder().String(csv)
	require.NoError(t, err)

	res, err := sheet.NewCSV().Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Кирпич керамический", res.Items[0].Name)
	assert.Equal(t, "тыс. шт", res.Items[0].Unit)
}

func TestCSV_Errors(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantErr string
	}

	tests := []testCase{
		{
			name:    "NoHeader",
			csv:     "Дата;Описание;Сумма\n01.02.2026;Оплата;100\n",
			wantErr: "no matching table layout",
		},
		{
			name:    "BadQuantity",
			csv:     "Наименование;Ед. изм.;Количество\nБетон;м3;много\n",
			wantErr: "row 2: invalid quantity",
		},
		{
			name:    "BadPrice",
			csv:     "Наименование;Ед. изм.;Количество;Цена\nБетон;м3;10;дорого\n",
			wantErr: "row 2: invalid price",
		},
		{
			name:    "MissingName",
			csv:     "Раздел;Наименование;Ед. изм.;Количество\nКровля;;м2;10\n",
			wantErr: "row 2: missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sheet.NewCSV().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestXLSX_FindsMatchingSheet(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Титульный лист"}))

	_, err := f.NewSheet("ВОР")
	require.NoError(t, err)

	rows := [][]any{
		{"Наименование работ", "Ед. изм.", "Количество", "Цена"},
		{"Земляные работы"},
		{"Разработка грунта", "м3", 1250.5, 480},
		{"Обратная засыпка", "м3", 300},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("ВОР", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := sheet.NewXLSX().Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "Смета", res.Profile)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Земляные работы", res.Items[0].Section)
	assert.True(t, dec("1250.5").Equal(res.Items[0].Quantity))
	assert.True(t, dec("480").Equal(res.Items[0].UnitPrice))
	assert.True(t, res.Items[1].UnitPrice.IsZero())
}

func TestXLSX_NoMatchingSheet(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Дата", "Сумма"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = sheet.NewXLSX().Parse(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, sheet.ErrNoProfile)
}
