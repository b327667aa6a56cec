// Package transform converts raw quote records into the normalized
// feature set the rating engine consumes: custom field derivations,
// categorical indexing and continuous banding, in that fixed order.
package transform

import (
	"encoding/json"
	"fmt"
	"os"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// IndexSuffix is appended to a field name to form its indexed column
const IndexSuffix = "_Index"

// CategoryConfig maps each configured categorical field to its
// raw-value → integer-index table. Read-only after load.
type CategoryConfig map[string]map[string]int

// LoadCategoryConfig loads the category mapping JSON file.
// A malformed file is a fatal configuration error.
func LoadCategoryConfig(path string) (CategoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("cannot read category index file "+path, err)
	}

	var cfg CategoryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Config("malformed category index file "+path, err)
	}

	for field, mapping := range cfg {
		if len(mapping) == 0 {
			return nil, errors.Config(fmt.Sprintf("category field %s has an empty mapping", field), nil)
		}
	}
	return cfg, nil
}

// applyIndexing appends <Field>_Index columns for every configured field
// present in the record. Fields are independent, so processing order does
// not affect the outcome. An unmapped value is a hard failure; there is
// no silent default index.
func (c CategoryConfig) applyIndexing(record types.Record) error {
	for field, mapping := range c {
		if !record.Has(field) {
			continue
		}
		key := record.Key(field)
		index, ok := mapping[key]
		if !ok {
			return errors.CategoryLookup(field, record[field])
		}
		record[field+IndexSuffix] = index
	}
	return nil
}
