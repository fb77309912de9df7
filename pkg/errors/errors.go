// Package errors provides custom error types for the fintail system.
// These errors enable programmatic checking of provider failure kinds,
// validation failures, and storage outcomes throughout the pipeline.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the fintail system
var (
	// ErrTimeout indicates that a provider call exceeded its deadline
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimited indicates that a provider rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidSymbol indicates that a provider does not recognize the company identifier
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrMalformedResponse indicates that a provider payload could not be decoded
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoData indicates that zero providers returned usable records
	ErrNoData = errors.New("no data available")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")
)

// FailureKind classifies why a provider fetch failed. The aggregator's retry
// loop inspects the kind instead of relying on error control flow across
// attempts.
type FailureKind string

// Provider failure kinds.
const (
	FailureTimeout           FailureKind = "timeout"
	FailureRateLimited       FailureKind = "rate_limited"
	FailureInvalidSymbol     FailureKind = "invalid_symbol"
	FailureMalformedResponse FailureKind = "malformed_response"
	FailureUnknown           FailureKind = "unknown"
)

// sentinel maps a failure kind to its sentinel error.
func (k FailureKind) sentinel() error {
	switch k {
	case FailureTimeout:
		return ErrTimeout
	case FailureRateLimited:
		return ErrRateLimited
	case FailureInvalidSymbol:
		return ErrInvalidSymbol
	case FailureMalformedResponse:
		return ErrMalformedResponse
	default:
		return nil
	}
}

// ProviderError represents a failed fetch from one external data provider.
type ProviderError struct {
	Provider   string
	Kind       FailureKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s failed (%s, status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s failed (%s): %s", e.Provider, e.Kind, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ProviderError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, kind FailureKind, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  message,
		Err:      err,
	}
}

// KindOf returns the failure kind of err, or FailureUnknown when err is not a
// ProviderError and matches no sentinel.
func KindOf(err error) FailureKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimited
	case errors.Is(err, ErrInvalidSymbol):
		return FailureInvalidSymbol
	case errors.Is(err, ErrMalformedResponse):
		return FailureMalformedResponse
	default:
		return FailureUnknown
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NoDataError indicates a reconciliation run in which every configured
// provider failed, so there was nothing to validate or store.
type NoDataError struct {
	CompanyID string
	Providers int
}

// Error implements the error interface
func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data available for %s: all %d providers failed", e.CompanyID, e.Providers)
}

// Is implements errors.Is support
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// NewNoDataError creates a new NoDataError
func NewNoDataError(companyID string, providers int) *NoDataError {
	return &NoDataError{CompanyID: companyID, Providers: providers}
}

// StorageError represents a failure while persisting reconciled records.
// Records written before the failure stay written; there is no rollback.
type StorageError struct {
	Operation string // "write", "query", "batch"
	CompanyID string
	Written   int
	Err       error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Written > 0 {
		return fmt.Sprintf("storage %s failed for %s after %d records: %v", e.Operation, e.CompanyID, e.Written, e.Err)
	}
	return fmt.Sprintf("storage %s failed for %s: %v", e.Operation, e.CompanyID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNoData checks if an error indicates that all providers failed
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapProvider wraps an error as a ProviderError with the given kind
func WrapProvider(provider string, kind FailureKind, err error) error {
	if err == nil {
		return nil
	}
	return NewProviderError(provider, kind, err.Error(), err)
}

// WrapStorage wraps an error as a StorageError
func WrapStorage(operation, companyID string, written int, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{
		Operation: operation,
		CompanyID: companyID,
		Written:   written,
		Err:       err,
	}
}
