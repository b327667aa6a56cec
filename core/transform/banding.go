// Package transform - Continuous banding
package transform

import (
	"encoding/json"
	"fmt"
	"os"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// Band is one labeled interval of a continuous field's domain
type Band struct {
	// Min is the lower bound
	Min float64 `json:"min"`

	// Max is the upper bound
	Max float64 `json:"max"`

	// Label is emitted into the output column
	Label string `json:"label"`
}

// FieldBanding is the band specification for one numeric field
type FieldBanding struct {
	// Bands is the ordered list of intervals
	Bands []Band `json:"bands"`

	// ColumnName is the output column (default <Field>Band)
	ColumnName string `json:"column_name,omitempty"`

	// MinInclusive includes the lower bound in each band (default true)
	MinInclusive *bool `json:"min_inclusive,omitempty"`

	// MaxExclusive excludes the upper bound from each band (default true)
	MaxExclusive *bool `json:"max_exclusive,omitempty"`
}

// minInclusive resolves the lower-bound rule with its default
func (f *FieldBanding) minInclusive() bool {
	return f.MinInclusive == nil || *f.MinInclusive
}

// maxExclusive resolves the upper-bound rule with its default
func (f *FieldBanding) maxExclusive() bool {
	return f.MaxExclusive == nil || *f.MaxExclusive
}

// contains checks a value against one band under the inclusivity rule.
// With the default lower-inclusive/upper-exclusive semantics a value at
// an internal boundary lands in the band whose lower bound it equals.
func (f *FieldBanding) contains(b Band, v float64) bool {
	var aboveMin, belowMax bool
	if f.minInclusive() {
		aboveMin = v >= b.Min
	} else {
		aboveMin = v > b.Min
	}
	if f.maxExclusive() {
		belowMax = v < b.Max
	} else {
		belowMax = v <= b.Max
	}
	return aboveMin && belowMax
}

// BandingConfig maps numeric field names to their band specifications.
// Read-only after load.
type BandingConfig map[string]*FieldBanding

// LoadBandingConfig loads and validates the continuous banding JSON file.
// Band lists are validated at load time: unordered, overlapping or gapped
// bands are rejected as configuration errors rather than resolved by
// first-match order.
func LoadBandingConfig(path string) (BandingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("cannot read banding file "+path, err)
	}

	var cfg BandingConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Config("malformed banding file "+path, err)
	}

	for field, spec := range cfg {
		if err := validateBands(field, spec); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func validateBands(field string, spec *FieldBanding) error {
	if spec == nil || len(spec.Bands) == 0 {
		return errors.Config(fmt.Sprintf("banding field %s has no bands", field), nil)
	}
	for i, b := range spec.Bands {
		if b.Min >= b.Max {
			return errors.Config(fmt.Sprintf("banding field %s: band %q has min %v >= max %v",
				field, b.Label, b.Min, b.Max), nil)
		}
		if i == 0 {
			continue
		}
		prev := spec.Bands[i-1]
		if b.Min < prev.Max {
			return errors.Config(fmt.Sprintf("banding field %s: band %q overlaps band %q",
				field, b.Label, prev.Label), nil)
		}
		if b.Min > prev.Max {
			return errors.Config(fmt.Sprintf("banding field %s: gap between band %q and band %q",
				field, prev.Label, b.Label), nil)
		}
	}
	return nil
}

// outputColumn resolves the output column name for a field
func (f *FieldBanding) outputColumn(field string) string {
	if f.ColumnName != "" {
		return f.ColumnName
	}
	return field + "Band"
}

// applyBanding emits each configured field's band label into its output
// column. A value outside every band is a hard failure.
func (c BandingConfig) applyBanding(record types.Record) error {
	for field, spec := range c {
		if !record.Has(field) {
			continue
		}
		value, ok := record.Number(field)
		if !ok {
			return errors.Banding(field, record[field]).
				WithContext("reason", "not a number")
		}

		matched := false
		for _, band := range spec.Bands {
			if spec.contains(band, value) {
				record[spec.outputColumn(field)] = band.Label
				matched = true
				break
			}
		}
		if !matched {
			return errors.Banding(field, value)
		}
	}
	return nil
}
