// Package rating evaluates the user-configurable rating formula: a base
// value followed by an ordered list of table-driven factors composed
// multiplicatively or additively into the final premium.
package rating

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// MissingPolicy decides what a factor does when its table has no entry
// for the record's key
type MissingPolicy string

const (
	// MissingFail hard-fails the rating (the default)
	MissingFail MissingPolicy = "fail"

	// MissingNeutral substitutes the operation's neutral element.
	// Only honored when the plan requests it explicitly.
	MissingNeutral MissingPolicy = "neutral"
)

// Base is the starting premium: either a constant amount or a table
// lookup on designated record fields
type Base struct {
	// Amount is the constant base, when no table is configured
	Amount decimal.Decimal

	// Table names the rating table for a lookup-driven base
	Table string

	// Keys are the record fields forming the base lookup key
	Keys []string
}

// Lookup reports whether the base resolves through a table
func (b Base) Lookup() bool {
	return b.Table != ""
}

// Factor is one step of the rating formula
type Factor struct {
	// Name identifies the factor in the premium trace
	Name string

	// Table names the rating table holding the factor values
	Table string

	// Keys are the record fields forming the lookup key, in order
	Keys []string

	// Operation is how the factor combines into the running premium
	Operation types.Operation

	// OnMissing decides behavior for missing table entries
	OnMissing MissingPolicy
}

// Plan is the loaded rating formula. Immutable after load.
type Plan struct {
	Base    Base
	Factors []Factor
}

// HCL decoding shapes

type planFile struct {
	Base    *baseBlock    `hcl:"base,block"`
	Factors []factorBlock `hcl:"factor,block"`
}

type baseBlock struct {
	Amount *float64 `hcl:"amount,optional"`
	Table  *string  `hcl:"table,optional"`
	Keys   []string `hcl:"key,optional"`
}

type factorBlock struct {
	Name      string   `hcl:"name,label"`
	Table     string   `hcl:"table"`
	Keys      []string `hcl:"key"`
	Operation string   `hcl:"operation"`
	OnMissing *string  `hcl:"on_missing,optional"`
}

// LoadPlan parses and validates the HCL rating plan file. Any defect is
// a fatal configuration error: a plan that cannot be trusted at startup
// invalidates every subsequent computation.
func LoadPlan(path string) (*Plan, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Config("malformed rating plan "+path, diags)
	}

	var raw planFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, errors.Config("invalid rating plan "+path, diags)
	}

	return buildPlan(&raw)
}

func buildPlan(raw *planFile) (*Plan, error) {
	if raw.Base == nil {
		return nil, errors.Config("rating plan has no base block", nil)
	}

	plan := &Plan{}

	switch {
	case raw.Base.Amount != nil && raw.Base.Table != nil:
		return nil, errors.Config("base block sets both amount and table", nil)
	case raw.Base.Amount != nil:
		plan.Base.Amount = decimal.NewFromFloat(*raw.Base.Amount)
	case raw.Base.Table != nil:
		if len(raw.Base.Keys) == 0 {
			return nil, errors.Config("base block names a table but no key fields", nil)
		}
		plan.Base.Table = *raw.Base.Table
		plan.Base.Keys = raw.Base.Keys
	default:
		return nil, errors.Config("base block sets neither amount nor table", nil)
	}

	seen := make(map[string]bool, len(raw.Factors))
	for _, f := range raw.Factors {
		if seen[f.Name] {
			return nil, errors.Config(fmt.Sprintf("duplicate factor %q in rating plan", f.Name), nil)
		}
		seen[f.Name] = true

		if len(f.Keys) == 0 {
			return nil, errors.Config(fmt.Sprintf("factor %q has no key fields", f.Name), nil)
		}

		op := types.Operation(f.Operation)
		if !op.Valid() {
			return nil, errors.Config(fmt.Sprintf("factor %q has unknown operation %q", f.Name, f.Operation), nil)
		}

		policy := MissingFail
		if f.OnMissing != nil {
			policy = MissingPolicy(*f.OnMissing)
			if policy != MissingFail && policy != MissingNeutral {
				return nil, errors.Config(fmt.Sprintf("factor %q has unknown on_missing policy %q", f.Name, *f.OnMissing), nil)
			}
		}

		plan.Factors = append(plan.Factors, Factor{
			Name:      f.Name,
			Table:     f.Table,
			Keys:      f.Keys,
			Operation: op,
			OnMissing: policy,
		})
	}

	return plan, nil
}
