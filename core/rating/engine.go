// Package rating - Rating engine
package rating

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// Engine evaluates the rating plan against transformed records. Result is
// a pure function of (record, plan, tables): no randomness, no hidden
// state, safe for concurrent use.
type Engine struct {
	plan       *Plan
	tables     TableSet
	primaryKey string
}

// NewEngine binds a plan to its tables, validating every table reference
// at construction so a dangling reference fails at startup.
func NewEngine(plan *Plan, tables TableSet, primaryKey string) (*Engine, error) {
	if plan == nil {
		return nil, errors.Config("rating engine needs a plan", nil)
	}

	if plan.Base.Lookup() {
		if err := checkTableRef("base", plan.Base.Table, plan.Base.Keys, tables); err != nil {
			return nil, err
		}
	}
	for _, f := range plan.Factors {
		if err := checkTableRef(f.Name, f.Table, f.Keys, tables); err != nil {
			return nil, err
		}
	}

	return &Engine{plan: plan, tables: tables, primaryKey: primaryKey}, nil
}

func checkTableRef(name, table string, keys []string, tables TableSet) error {
	t, ok := tables[table]
	if !ok {
		return errors.Config(fmt.Sprintf("factor %s references unknown rating table %q", name, table), nil)
	}
	if len(keys) != len(t.KeyColumns) {
		return errors.Config(fmt.Sprintf("factor %s uses %d key fields but table %q has %d key columns",
			name, len(keys), table, len(t.KeyColumns)), nil)
	}
	return nil
}

// Plan returns the bound rating plan
func (e *Engine) Plan() *Plan {
	return e.plan
}

// Rate computes the premium breakdown for one transformed record: a
// single linear pass Base → Factor₁ → … → Final with every intermediate
// recorded in the trace.
func (e *Engine) Rate(record types.Record) (*types.PremiumResult, error) {
	id := record.Key(e.primaryKey)

	result := &types.PremiumResult{
		RecordID: id,
		Factors:  make([]types.FactorApplication, 0, len(e.plan.Factors)),
	}

	base, baseKey, err := e.resolveBase(record)
	if err != nil {
		return nil, errors.AsError(err).WithRecord(id)
	}
	result.Base = base
	result.BaseKey = baseKey

	running := base
	for _, factor := range e.plan.Factors {
		key := e.recordKey(record, factor.Keys)

		value, ok := e.tables[factor.Table].Lookup(key)
		defaulted := false
		if !ok {
			if factor.OnMissing != MissingNeutral {
				return nil, errors.RatingLookup(factor.Name, key).WithRecord(id)
			}
			value = factor.Operation.Neutral()
			defaulted = true
		}

		running = factor.Operation.Apply(running, value)
		result.Factors = append(result.Factors, types.FactorApplication{
			Name:         factor.Name,
			Operation:    factor.Operation,
			Key:          key,
			Value:        value,
			RunningTotal: running,
			Defaulted:    defaulted,
		})
	}

	result.FinalPremium = running
	return result, nil
}

func (e *Engine) resolveBase(record types.Record) (decimal.Decimal, string, error) {
	if !e.plan.Base.Lookup() {
		return e.plan.Base.Amount, "", nil
	}

	key := e.recordKey(record, e.plan.Base.Keys)
	value, ok := e.tables[e.plan.Base.Table].Lookup(key)
	if !ok {
		return decimal.Zero, "", errors.RatingLookup("base", key)
	}
	return value, key, nil
}

// recordKey builds the composite lookup key from the record's field
// values in plan order
func (e *Engine) recordKey(record types.Record, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = record.Key(f)
	}
	return CompositeKey(parts)
}
