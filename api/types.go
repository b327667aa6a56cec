// Package api - Request and response envelopes
package api

import (
	"net/http"

	"quote-pricer/core/pricer"
	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// PriceRequest is the single-quote request body
type PriceRequest struct {
	// Quote is one raw record: field name → scalar
	Quote types.Record `json:"quote" validate:"required,min=1"`
}

// PriceResponse is the single-quote response
type PriceResponse struct {
	// RequestID correlates logs and responses
	RequestID string `json:"request_id"`

	// Result is the premium breakdown plus the transformed record
	Result *pricer.QuoteResult `json:"result"`
}

// BatchRequest is the batch request body
type BatchRequest struct {
	// Quotes is the table of raw records
	Quotes []types.Record `json:"quotes" validate:"required,min=1,dive,min=1"`
}

// BatchResponse is the batch response
type BatchResponse struct {
	// RequestID correlates logs and responses
	RequestID string `json:"request_id"`

	// Result holds per-record outcomes and counts
	Result *pricer.BatchResult `json:"result"`
}

// ErrorResponse is the error envelope. The embedded error carries the
// kind, the offending field/value and the record identifier.
type ErrorResponse struct {
	// RequestID correlates logs and responses
	RequestID string `json:"request_id"`

	// Error is the structured pipeline error
	Error *errors.Error `json:"error"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the version response
type VersionResponse struct {
	Version string `json:"version"`
}

// ReloadResponse is the configuration reload response
type ReloadResponse struct {
	// RequestID correlates logs and responses
	RequestID string `json:"request_id"`

	// Reloaded indicates the context swap happened
	Reloaded bool `json:"reloaded"`
}

// pricerTable normalizes request records into the pipeline's tabular form
func pricerTable(records []types.Record) *types.Table {
	table := types.NewTable()
	for _, r := range records {
		table.Append(r)
	}
	return table
}

// statusForKind maps error kinds to HTTP status codes
func statusForKind(k errors.Kind) int {
	switch k {
	case errors.KindInput:
		return http.StatusBadRequest
	case errors.KindSchema, errors.KindCategoryLookup, errors.KindBanding, errors.KindRatingLookup:
		return http.StatusUnprocessableEntity
	case errors.KindConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
