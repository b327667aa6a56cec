// Package dataset loads raw quote records from individual JSON files and
// columnar batch files (CSV, XLSX) into one tabular representation.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// supported file extensions, in the order LoadDir visits equal-named files
var extensions = []string{".json", ".csv", ".xlsx"}

// Supported reports whether the loader understands the file's extension
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile loads a single data file into a table based on its extension.
// JSON files may hold one record or an array of records; CSV and XLSX
// files are header-plus-rows batch files.
func LoadFile(path string) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, errors.Input(fmt.Sprintf("unsupported file format: %s", filepath.Ext(path)))
	}
}

// LoadDir loads every supported file under dir (recursively) into one
// table. Heterogeneous field sets merge into a column union; a record
// simply lacks the fields its source file never had.
func LoadDir(dir string) (*types.Table, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindInput, "failed to walk data directory", err)
	}
	if len(files) == 0 {
		return nil, errors.Input(fmt.Sprintf("no data files found in %s", dir))
	}
	sort.Strings(files)

	table := types.NewTable()
	for _, f := range files {
		part, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		table.Extend(part)
	}
	return table, nil
}

// Load loads a source descriptor: a single file or a directory of files
func Load(path string) (*types.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindInput, "cannot read data source", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// Validate checks that every record carries the primary-key field.
// The first absent key fails the whole load with a SchemaError.
func Validate(table *types.Table, primaryKey string) error {
	for i, r := range table.Records {
		if !r.Has(primaryKey) {
			return errors.Schema(fmt.Sprintf("record %d is missing primary key field %s", i, primaryKey)).
				WithField(primaryKey).WithContext("position", i)
		}
	}
	return nil
}

func loadJSON(path string) (*types.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindInput, "failed to read "+path, err)
	}

	table := types.NewTable()

	// A file holds either one quote object or a list of them
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []types.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.Wrapf(errors.KindInput, err, "malformed JSON in %s", path)
		}
		for _, r := range records {
			table.Append(r)
		}
		return table, nil
	}

	var record types.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(errors.KindInput, err, "malformed JSON in %s", path)
	}
	table.Append(record)
	return table, nil
}

func loadCSV(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindInput, "failed to open "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(errors.KindInput, err, "malformed CSV in %s", path)
	}

	return rowsToTable(rows, path)
}

func loadXLSX(path string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindInput, "failed to open "+path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Input(fmt.Sprintf("no sheets in %s", path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(errors.KindInput, err, "failed to read sheet %s of %s", sheets[0], path)
	}

	return rowsToTable(rows, path)
}

// rowsToTable converts header-plus-rows cells into records, parsing
// numeric-looking cells into float64
func rowsToTable(rows [][]string, path string) (*types.Table, error) {
	if len(rows) == 0 {
		return nil, errors.Input(fmt.Sprintf("empty batch file %s", path))
	}

	header := rows[0]
	table := types.NewTable()

	for _, row := range rows[1:] {
		record := make(types.Record, len(header))
		for i, col := range header {
			if i >= len(row) {
				continue
			}
			record[col] = parseCell(row[i])
		}
		table.Append(record)
	}
	return table, nil
}

func parseCell(cell string) any {
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
