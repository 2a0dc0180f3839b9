// Package errors provides shared error types for the EDGAR client.
package errors

import (
	"errors"
	"fmt"
)

// NotFoundError indicates an entity was not found in the registry.
type NotFoundError struct {
	EntityType string // "company", "filing", "concept"
	Identifier string // CIK, accession number, or search query
}

func (e *NotFoundError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("%s not found in EDGAR: %s", e.EntityType, e.Identifier)
	}
	return fmt.Sprintf("not found in EDGAR: %s", e.Identifier)
}

// NewNotFoundError creates a NotFoundError for a company lookup.
func NewNotFoundError(identifier string) *NotFoundError {
	return &NotFoundError{
		EntityType: "company",
		Identifier: identifier,
	}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// UpstreamError indicates EDGAR answered with a non-success HTTP status.
type UpstreamError struct {
	Endpoint   string // which endpoint failed: "tickers", "submissions", "concept", "archives"
	StatusCode int
	Snippet    string // short slice of the response body, for diagnosis
}

func (e *UpstreamError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("EDGAR %s request failed with HTTP %d: %s", e.Endpoint, e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("EDGAR %s request failed with HTTP %d", e.Endpoint, e.StatusCode)
}

// EmptyResponseError indicates the fetch deadline expired before any
// body bytes arrived. Distinct from a truncated-but-nonempty response.
type EmptyResponseError struct {
	Endpoint string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("EDGAR %s request returned no data before the deadline", e.Endpoint)
}

// PartialPayloadError indicates the accumulated response bytes could not
// be parsed as JSON, even after repair. Excerpt is capped so error
// messages stay bounded regardless of payload size.
type PartialPayloadError struct {
	Endpoint  string
	ByteCount int
	Excerpt   string
	Err       error
}

func (e *PartialPayloadError) Error() string {
	return fmt.Sprintf("EDGAR %s response is partial or malformed (%d bytes): %v; excerpt: %s",
		e.Endpoint, e.ByteCount, e.Err, e.Excerpt)
}

func (e *PartialPayloadError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstream returns true if the error is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsEmptyResponse returns true if the error is an EmptyResponseError.
func IsEmptyResponse(err error) bool {
	var ee *EmptyResponseError
	return errors.As(err, &ee)
}

// IsPartialPayload returns true if the error is a PartialPayloadError.
func IsPartialPayload(err error) bool {
	var pe *PartialPayloadError
	return errors.As(err, &pe)
}
