// Package transform - Custom field derivations
package transform

import (
	"fmt"
	"sort"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// Derivation is a pure function of the raw record that adds or overwrites
// fields before indexing and banding run. A derivation whose source field
// is absent leaves the record untouched.
type Derivation struct {
	// Name identifies the derivation in the pipeline configuration
	Name string

	// Apply mutates the in-progress record
	Apply func(types.Record) error
}

var registry = map[string]Derivation{}

// Register adds a derivation to the registry. Called from init or by
// embedding applications before pipelines are built.
func Register(d Derivation) {
	registry[d.Name] = d
}

// Derivations resolves an ordered list of derivation names against the
// registry. An unknown name is a configuration error.
func Derivations(names []string) ([]Derivation, error) {
	out := make([]Derivation, 0, len(names))
	for _, name := range names {
		d, ok := registry[name]
		if !ok {
			return nil, errors.Config(fmt.Sprintf("unknown derivation %q (registered: %v)",
				name, registeredNames()), nil)
		}
		out = append(out, d)
	}
	return out, nil
}

func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	// age_band buckets DrivAge into DrivAgeBand
	Register(Derivation{
		Name: "age_band",
		Apply: func(r types.Record) error {
			age, ok := r.Number("DrivAge")
			if !ok {
				return nil
			}
			switch {
			case age < 25:
				r["DrivAgeBand"] = "Under 25"
			case age < 40:
				r["DrivAgeBand"] = "25-39"
			case age < 60:
				r["DrivAgeBand"] = "40-59"
			default:
				r["DrivAgeBand"] = "60+"
			}
			return nil
		},
	})

	// power_group buckets VehPower into PowerGroup
	Register(Derivation{
		Name: "power_group",
		Apply: func(r types.Record) error {
			power, ok := r.Number("VehPower")
			if !ok {
				return nil
			}
			switch {
			case power < 5:
				r["PowerGroup"] = "Low"
			case power < 8:
				r["PowerGroup"] = "Medium"
			default:
				r["PowerGroup"] = "High"
			}
			return nil
		},
	})
}
