// Package errors provides the structured error taxonomy for the rating pipeline.
package errors

import (
	"fmt"
)

// Kind identifies the category of error
type Kind string

const (
	// KindSchema indicates malformed or missing required input fields
	KindSchema Kind = "SCHEMA_ERROR"

	// KindCategoryLookup indicates a categorical value absent from the mapping
	KindCategoryLookup Kind = "CATEGORY_LOOKUP_ERROR"

	// KindBanding indicates a numeric value outside every configured band
	KindBanding Kind = "BANDING_ERROR"

	// KindRatingLookup indicates a missing rating-table entry
	KindRatingLookup Kind = "RATING_LOOKUP_ERROR"

	// KindConfig indicates a malformed mapping, banding, plan or table file.
	// Config errors are fatal at load time and halt startup.
	KindConfig Kind = "CONFIG_ERROR"

	// KindInput indicates an invalid request from a caller
	KindInput Kind = "INPUT_ERROR"

	// KindInternal indicates an internal error
	KindInternal Kind = "INTERNAL_ERROR"
)

// Error is a pipeline error with structured context: which record,
// which field, which offending value.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithField records the offending field name
func (e *Error) WithField(field string) *Error {
	return e.WithContext("field", field)
}

// WithValue records the offending value
func (e *Error) WithValue(value any) *Error {
	return e.WithContext("value", value)
}

// WithRecord records the identifier of the failing record
func (e *Error) WithRecord(id string) *Error {
	return e.WithContext("record", id)
}

// WithStage records the pipeline stage that failed
func (e *Error) WithStage(stage string) *Error {
	return e.WithContext("stage", stage)
}

// WithContext adds arbitrary context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsKind checks whether err is a pipeline error of the given kind
func IsKind(err error, k Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == k
	}
	return false
}

// AsError extracts a pipeline error, wrapping foreign errors as internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return Wrap(KindInternal, "unexpected error", err)
}

// Schema creates a schema error
func Schema(message string) *Error {
	return New(KindSchema, message)
}

// CategoryLookup creates an unmapped-category error
func CategoryLookup(field string, value any) *Error {
	return Newf(KindCategoryLookup, "no index for value %v in field %s", value, field).
		WithField(field).WithValue(value)
}

// Banding creates an out-of-band error
func Banding(field string, value any) *Error {
	return Newf(KindBanding, "value %v of field %s falls outside every configured band", value, field).
		WithField(field).WithValue(value)
}

// RatingLookup creates a missing rating-table-entry error
func RatingLookup(factor, key string) *Error {
	return Newf(KindRatingLookup, "no entry for key %q in factor %s", key, factor).
		WithContext("factor", factor).WithContext("key", key)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(KindConfig, message, cause)
}

// Input creates an input validation error
func Input(message string) *Error {
	return New(KindInput, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}
