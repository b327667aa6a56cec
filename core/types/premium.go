// Package types - Premium result types
package types

import (
	"github.com/shopspring/decimal"
)

// Operation is how a rating factor combines into the running premium
type Operation string

const (
	// OperationMultiply multiplies the running premium by the factor value
	OperationMultiply Operation = "multiply"

	// OperationAdd adds the factor value to the running premium
	OperationAdd Operation = "add"
)

// Valid reports whether the operation is a known one
func (o Operation) Valid() bool {
	return o == OperationMultiply || o == OperationAdd
}

// Neutral returns the operation's neutral element (1 for multiply, 0 for add)
func (o Operation) Neutral() decimal.Decimal {
	if o == OperationAdd {
		return decimal.Zero
	}
	return decimal.NewFromInt(1)
}

// Apply combines the factor value into the running premium
func (o Operation) Apply(running, value decimal.Decimal) decimal.Decimal {
	if o == OperationAdd {
		return running.Add(value)
	}
	return running.Mul(value)
}

// FactorApplication is one step of the rating trace
type FactorApplication struct {
	// Name identifies the factor in the rating plan
	Name string `json:"name"`

	// Operation is how the factor was applied
	Operation Operation `json:"operation"`

	// Key is the resolved lookup key for this record
	Key string `json:"key"`

	// Value is the factor value from the rating table
	Value decimal.Decimal `json:"value"`

	// RunningTotal is the premium after applying this factor
	RunningTotal decimal.Decimal `json:"running_total"`

	// Defaulted marks a factor that fell back to its neutral element
	// because the plan explicitly allows missing entries for it
	Defaulted bool `json:"defaulted,omitempty"`
}

// PremiumResult is the full breakdown for one rated quote
type PremiumResult struct {
	// RecordID is the value of the primary-key field
	RecordID string `json:"record_id"`

	// Base is the starting premium before factors
	Base decimal.Decimal `json:"base_value"`

	// BaseKey is the lookup key used for a table-driven base, empty for a constant
	BaseKey string `json:"base_key,omitempty"`

	// Factors is the ordered trace of factor applications
	Factors []FactorApplication `json:"factors"`

	// FinalPremium is the premium after all factors
	FinalPremium decimal.Decimal `json:"final_premium"`
}
