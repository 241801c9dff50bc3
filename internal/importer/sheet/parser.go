// Package sheet reads BOQ lines from spreadsheet exports: CSV files saved by
// estimating software and XLSX workbooks.
package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/boq"
)

var ErrNoProfile = errors.New("no matching table layout found: expected columns for Смета or ВОР")

// Result is a parsed table.
type Result struct {
	Profile string
	Items   []boq.ItemParams
	// Skipped counts rows without a quantity, such as totals.
	Skipped int
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, its columns and the header row index.
func detectProfile(rows [][]string) (*Profile, columns, int) {
	for rowIdx, row := range rows {
		for i := range profiles {
			if cols, ok := profiles[i].match(row); ok {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, columns{}, 0
}

func parseTable(rows [][]string) (*Result, error) {
	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoProfile
	}

	res := &Result{Profile: profile.Name}

	section := ""

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2 // 1-based, skipping header

		filled := nonEmpty(row)
		if len(filled) == 0 {
			continue
		}

		// A lone caption in the first or name column opens a section.
		if len(filled) == 1 && (filled[0] == 0 || filled[0] == cols.name) {
			section = cellValue(row, filled[0])
			continue
		}

		name := cellValue(row, cols.name)

		// Column numbering rows ("1 2 3 4 5") under the header.
		if _, err := parseNumber(name); err == nil {
			res.Skipped++
			continue
		}

		qtyStr := cellValue(row, cols.quantity)
		if qtyStr == "" {
			res.Skipped++
			continue
		}

		if name == "" {
			return nil, fmt.Errorf("row %d: missing name", rowNum)
		}

		qty, err := parseNumber(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q: %w", rowNum, qtyStr, err)
		}

		price := decimal.Zero

		if s := cellValue(row, cols.price); s != "" {
			if price, err = parseNumber(s); err != nil {
				return nil, fmt.Errorf("row %d: invalid price %q: %w", rowNum, s, err)
			}
		}

		itemSection := section
		if s := cellValue(row, cols.section); s != "" {
			itemSection = s
		}

		res.Items = append(res.Items, boq.ItemParams{
			Section:   itemSection,
			Code:      cellValue(row, cols.code),
			Name:      name,
			Unit:      cellValue(row, cols.unit),
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	return res, nil
}

func nonEmpty(row []string) []int {
	var idx []int

	for i, cell := range row {
		if strings.TrimSpace(cell) != "" {
			idx = append(idx, i)
		}
	}

	return idx
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
