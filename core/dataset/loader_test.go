package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quote-pricer/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileJSONSingleRecord(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quote.json",
		`{"IDpol": 1, "Area": "A", "VehAge": 2}`)

	table, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	assert.Equal(t, "A", table.Records[0]["Area"])
	assert.Equal(t, 2.0, table.Records[0]["VehAge"])
}

func TestLoadFileJSONArray(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quotes.json",
		`[{"IDpol": 1, "Area": "A"}, {"IDpol": 2, "Area": "B"}]`)

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestLoadFileCSVParsesNumericCells(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.csv",
		"IDpol,Area,VehAge\n1,A,2\n2,B,0\n")

	table, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 1.0, table.Records[0]["IDpol"])
	assert.Equal(t, "A", table.Records[0]["Area"])
	assert.Equal(t, 0.0, table.Records[1]["VehAge"])
}

func TestLoadFileXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"IDpol", "Area", "VehAge"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{1, "A", 2}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{2, "B", 7}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 1.0, table.Records[0]["IDpol"])
	assert.Equal(t, "B", table.Records[1]["Area"])
	assert.Equal(t, 7.0, table.Records[1]["VehAge"])
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quote.yaml", "IDpol: 1\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInput))
}

func TestLoadDirMergesHeterogeneousRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"IDpol": 1, "Area": "A"}`)
	writeFile(t, dir, "b.json", `{"IDpol": 2, "Region": "R1"}`)

	table, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	// union of field sets; absent fields stay absent
	assert.ElementsMatch(t, []string{"IDpol", "Area", "Region"}, table.Columns)
	assert.False(t, table.Records[1].Has("Area"))
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInput))
}

func TestValidateMissingPrimaryKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quotes.json",
		`[{"IDpol": 1, "Area": "A"}, {"Area": "B"}]`)

	table, err := LoadFile(path)
	require.NoError(t, err)

	err = Validate(table, "IDpol")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSchema))

	e := errors.AsError(err)
	assert.Equal(t, "IDpol", e.Context["field"])
	assert.Equal(t, 1, e.Context["position"])
}
