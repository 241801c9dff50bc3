package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MrJamesThe3rd/procura/internal/importer/sheet"
)

// Extensions offered by the file picker.
var Extensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

type Service struct {
	csvImporter  Importer
	xlsxImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter:  sheet.NewCSV(),
		xlsxImporter: sheet.NewXLSX(),
	}
}

func (s *Service) Parse(format Format, r io.Reader) (*sheet.Result, error) {
	var importer Importer

	switch format {
	case FormatCSV:
		importer = s.csvImporter
	case FormatXLSX:
		importer = s.xlsxImporter
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return importer.Parse(r)
}

// Import reads the file at path, choosing the parser by extension.
func (s *Service) Import(ctx context.Context, path string) (*sheet.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	res, err := s.Parse(FormatOf(path), f)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(path), err)
	}

	slog.Info("boq lines parsed", "file", filepath.Base(path), "profile", res.Profile, "items", len(res.Items), "skipped", res.Skipped)

	return res, nil
}
