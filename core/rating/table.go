// Package rating - Rating table loading
package rating

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"quote-pricer/internal/errors"
)

// keySeparator joins composite key parts. Canonical scalar forms never
// contain it for the datasets this engine rates.
const keySeparator = "|"

// Table is one loaded rating table: named key columns and a factor value
// per composite key. Read-only after load.
type Table struct {
	// Name is the table name (file name without extension)
	Name string

	// KeyColumns are the CSV's key columns, in file order
	KeyColumns []string

	// ValueColumn is the CSV's value column (the last one)
	ValueColumn string

	rows map[string]decimal.Decimal
}

// Lookup resolves a composite key to its factor value
func (t *Table) Lookup(key string) (decimal.Decimal, bool) {
	v, ok := t.rows[key]
	return v, ok
}

// Len returns the number of table rows
func (t *Table) Len() int {
	return len(t.rows)
}

// CompositeKey joins key parts canonically
func CompositeKey(parts []string) string {
	return strings.Join(parts, keySeparator)
}

// TableSet is the named collection of rating tables a plan draws from
type TableSet map[string]*Table

// LoadTables loads every CSV rating table under dir. Table layout: one or
// more key columns followed by a single value column (the last column).
// A malformed table halts startup.
func LoadTables(dir string) (TableSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Config("cannot read rating tables directory "+dir, err)
	}

	set := make(TableSet)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		table, err := loadTable(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		set[table.Name] = table
	}

	if len(set) == 0 {
		return nil, errors.Config("no rating tables found in "+dir, nil)
	}
	return set, nil
}

func loadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Config("cannot read rating table "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Config("malformed rating table "+path, err)
	}
	if len(rows) < 2 {
		return nil, errors.Config("rating table "+path+" has no data rows", nil)
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, errors.Config("rating table "+path+" needs at least one key column and a value column", nil)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table := &Table{
		Name:        name,
		KeyColumns:  header[:len(header)-1],
		ValueColumn: header[len(header)-1],
		rows:        make(map[string]decimal.Decimal, len(rows)-1),
	}

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.Config(fmt.Sprintf("rating table %s: row %d has %d cells, want %d",
				path, i+2, len(row), len(header)), nil)
		}
		value, err := decimal.NewFromString(row[len(row)-1])
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("rating table %s: row %d has non-numeric value %q",
				path, i+2, row[len(row)-1]), err)
		}
		key := CompositeKey(row[:len(row)-1])
		if _, dup := table.rows[key]; dup {
			return nil, errors.Config(fmt.Sprintf("rating table %s: duplicate key %q", path, key), nil)
		}
		table.rows[key] = value
	}

	return table, nil
}
