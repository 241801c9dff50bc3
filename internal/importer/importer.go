// Package importer turns spreadsheet files into BOQ lines.
package importer

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/procura/internal/importer/sheet"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf derives the format from a file name. Unknown extensions are read
// as CSV, which is what .txt exports of estimating software are.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

type Importer interface {
	Parse(r io.Reader) (*sheet.Result, error)
}
