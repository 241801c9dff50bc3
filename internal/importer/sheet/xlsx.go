package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSX parses the first worksheet whose header matches a profile.
type XLSX struct{}

func NewXLSX() *XLSX {
	return &XLSX{}
}

func (p *XLSX) Parse(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		// Raw values keep numbers independent of the cell display format.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		res, err := parseTable(rows)
		if errors.Is(err, ErrNoProfile) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}

		return res, nil
	}

	return nil, ErrNoProfile
}
