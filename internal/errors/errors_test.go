package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		expected string
	}{
		{
			name: "with entity type",
			err: &NotFoundError{
				EntityType: "company",
				Identifier: "0000320193",
			},
			expected: "company not found in EDGAR: 0000320193",
		},
		{
			name: "without entity type",
			err: &NotFoundError{
				Identifier: "0001018724",
			},
			expected: "not found in EDGAR: 0001018724",
		},
		{
			name: "with concept",
			err: &NotFoundError{
				EntityType: "concept",
				Identifier: "NetIncomeLoss",
			},
			expected: "concept not found in EDGAR: NetIncomeLoss",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("NotFoundError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("0000320193")

	if err.EntityType != "company" {
		t.Errorf("EntityType = %q, want %q", err.EntityType, "company")
	}
	if err.Identifier != "0000320193" {
		t.Errorf("Identifier = %q, want %q", err.Identifier, "0000320193")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name: "with field and value",
			err: &ValidationError{
				Field:   "cik",
				Value:   "ABC",
				Message: "must contain only digits",
			},
			expected: "validation failed for cik=\"ABC\": must contain only digits",
		},
		{
			name: "with field only",
			err: &ValidationError{
				Field:   "query",
				Message: "is required",
			},
			expected: "validation failed for query: is required",
		},
		{
			name: "message only",
			err: &ValidationError{
				Message: "invalid input",
			},
			expected: "validation failed: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("year", "99", "must be a 4-digit year")

	if err.Field != "year" {
		t.Errorf("Field = %q, want %q", err.Field, "year")
	}
	if err.Value != "99" {
		t.Errorf("Value = %q, want %q", err.Value, "99")
	}
	if err.Message != "must be a 4-digit year" {
		t.Errorf("Message = %q, want %q", err.Message, "must be a 4-digit year")
	}
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{Endpoint: "submissions", StatusCode: 503, Snippet: "service unavailable"}
	want := "EDGAR submissions request failed with HTTP 503: service unavailable"
	if got := err.Error(); got != want {
		t.Errorf("UpstreamError.Error() = %q, want %q", got, want)
	}

	bare := &UpstreamError{Endpoint: "concept", StatusCode: 404}
	want = "EDGAR concept request failed with HTTP 404"
	if got := bare.Error(); got != want {
		t.Errorf("UpstreamError.Error() = %q, want %q", got, want)
	}
}

func TestEmptyResponseError_Error(t *testing.T) {
	err := &EmptyResponseError{Endpoint: "concept"}
	if !strings.Contains(err.Error(), "no data") {
		t.Errorf("EmptyResponseError.Error() = %q, want mention of no data", err.Error())
	}
}

func TestPartialPayloadError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &PartialPayloadError{
		Endpoint:  "concept",
		ByteCount: 4096,
		Excerpt:   `{"units":{"USD":[{"fy":20`,
		Err:       cause,
	}

	msg := err.Error()
	if !strings.Contains(msg, "4096 bytes") {
		t.Errorf("error should include byte count, got %q", msg)
	}
	if !strings.Contains(msg, "excerpt") {
		t.Errorf("error should include the excerpt, got %q", msg)
	}
	if !errors.Is(err, cause) {
		t.Error("PartialPayloadError should unwrap to its cause")
	}
}

func TestIsNotFound(t *testing.T) {
	notFoundErr := &NotFoundError{Identifier: "123"}
	validationErr := &ValidationError{Message: "test"}
	plainErr := errors.New("plain error")

	if !IsNotFound(notFoundErr) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
	if !IsNotFound(fmt.Errorf("fetching company: %w", notFoundErr)) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsNotFound(validationErr) {
		t.Error("IsNotFound should return false for ValidationError")
	}
	if IsNotFound(plainErr) {
		t.Error("IsNotFound should return false for plain error")
	}
	if IsNotFound(nil) {
		t.Error("IsNotFound should return false for nil")
	}
}

func TestIsValidation(t *testing.T) {
	notFoundErr := &NotFoundError{Identifier: "123"}
	validationErr := &ValidationError{Message: "test"}
	plainErr := errors.New("plain error")

	if IsValidation(notFoundErr) {
		t.Error("IsValidation should return false for NotFoundError")
	}
	if !IsValidation(validationErr) {
		t.Error("IsValidation should return true for ValidationError")
	}
	if IsValidation(plainErr) {
		t.Error("IsValidation should return false for plain error")
	}
	if IsValidation(nil) {
		t.Error("IsValidation should return false for nil")
	}
}

func TestIsUpstream(t *testing.T) {
	ue := &UpstreamError{Endpoint: "tickers", StatusCode: 500}

	if !IsUpstream(ue) {
		t.Error("IsUpstream should return true for UpstreamError")
	}
	if !IsUpstream(fmt.Errorf("search: %w", ue)) {
		t.Error("IsUpstream should see through wrapping")
	}
	if IsUpstream(errors.New("boom")) {
		t.Error("IsUpstream should return false for plain error")
	}
}

func TestIsEmptyResponse(t *testing.T) {
	if !IsEmptyResponse(&EmptyResponseError{Endpoint: "concept"}) {
		t.Error("IsEmptyResponse should return true for EmptyResponseError")
	}
	if IsEmptyResponse(&UpstreamError{Endpoint: "concept", StatusCode: 500}) {
		t.Error("IsEmptyResponse should return false for UpstreamError")
	}
}

func TestIsPartialPayload(t *testing.T) {
	pe := &PartialPayloadError{Endpoint: "concept", ByteCount: 10, Excerpt: "{", Err: errors.New("eof")}

	if !IsPartialPayload(pe) {
		t.Error("IsPartialPayload should return true for PartialPayloadError")
	}
	if !IsPartialPayload(fmt.Errorf("decode: %w", pe)) {
		t.Error("IsPartialPayload should see through wrapping")
	}
	if IsPartialPayload(nil) {
		t.Error("IsPartialPayload should return false for nil")
	}
}
