package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/importer"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, importer.FormatXLSX, importer.FormatOf("/tmp/ВОР кровля.XLSX"))
	assert.Equal(t, importer.FormatCSV, importer.FormatOf("смета.csv"))
	assert.Equal(t, importer.FormatCSV, importer.FormatOf("export.txt"))
}

func TestService_Import(t *testing.T) {
	path := filepath.Join(t.TempDir(), "вор.csv")
	require.NoError(t, os.WriteFile(path, []byte("Наименование;Ед. изм.;Количество\nБетон B25;м3;12,5\n"), 0o600))

	res, err := importer.NewService().Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ВОР", res.Profile)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Бетон B25", res.Items[0].Name)
}

func TestService_Import_MissingFile(t *testing.T) {
	_, err := importer.NewService().Import(context.Background(), filepath.Join(t.TempDir(), "нет.xlsx"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestService_Parse_UnknownFormat(t *testing.T) {
	_, err := importer.NewService().Parse("pdf", nil)
	require.Error(t, err)
}
