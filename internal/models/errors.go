package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNoCapableProvider means no registered provider supports the
	// required capability. This is a configuration error and the only
	// condition surfaced to the end caller.
	ErrorTypeNoCapableProvider ErrorType = "no_capable_provider"
	// ErrorTypeProvider represents a per-attempt transport failure
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeRateLimit represents a per-attempt provider rate limit
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeTimeout represents a per-attempt provider timeout
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeExhausted means every candidate in the fallback chain failed
	ErrorTypeExhausted ErrorType = "all_providers_exhausted"
	// ErrorTypeParse represents an unrecoverable provider response
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeValidation represents a structural invariant violation
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeCache represents a cache backend failure, treated as a miss
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeInternal represents an unexpected internal failure
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitzero"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`

	// Attempts carries the ordered per-candidate failure causes when
	// Type is ErrorTypeExhausted.
	Attempts []AttemptFailure `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// IsErrorType reports whether err is an AppError of the given type
// anywhere in its chain.
func IsErrorType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNoCapableProviderError creates the fatal precondition error raised
// when the registry holds no provider for a capability.
func NewNoCapableProviderError(capability Capability) *AppError {
	return &AppError{
		Type:      ErrorTypeNoCapableProvider,
		Message:   fmt.Sprintf("no registered provider supports capability %q", capability),
		Code:      "NO_CAPABLE_PROVIDER",
		Retryable: false,
	}
}

// NewProviderError creates a per-attempt transport error
func NewProviderError(provider, message string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeProvider,
		Message:   fmt.Sprintf("provider %s error: %s", provider, message),
		Code:      fmt.Sprintf("PROVIDER_%s_ERROR", strings.ToUpper(provider)),
		Retryable: true,
		Cause:     cause,
	}
}

// NewRateLimitError creates a per-attempt rate limit error
func NewRateLimitError(provider string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeRateLimit,
		Message:   fmt.Sprintf("provider %s rate limited", provider),
		Code:      "RATE_LIMIT_EXCEEDED",
		Retryable: true,
		Cause:     cause,
	}
}

// NewTimeoutError creates a per-attempt timeout error
func NewTimeoutError(provider string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeTimeout,
		Message:   fmt.Sprintf("provider %s attempt timed out", provider),
		Code:      "PROVIDER_TIMEOUT",
		Retryable: true,
		Cause:     cause,
	}
}

// NewAllProvidersExhaustedError creates the terminal fallback-chain error
// carrying the ordered per-candidate failure causes.
func NewAllProvidersExhaustedError(capability Capability, attempts []AttemptFailure) *AppError {
	causes := make([]string, 0, len(attempts))
	for _, a := range attempts {
		causes = append(causes, fmt.Sprintf("%s: %v", a.Provider, a.Cause))
	}
	return &AppError{
		Type:      ErrorTypeExhausted,
		Message:   fmt.Sprintf("all providers exhausted for capability %q: [%s]", capability, strings.Join(causes, "; ")),
		Code:      "ALL_PROVIDERS_EXHAUSTED",
		Retryable: false,
		Attempts:  attempts,
	}
}

// NewParseError creates a parse failure error
func NewParseError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeParse,
		Message:   message,
		Code:      "PARSE_FAILURE",
		Retryable: false,
		Cause:     cause,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeValidation,
		Message:   message,
		Code:      "VALIDATION_FAILURE",
		Retryable: false,
		Cause:     cause,
	}
}

// NewCacheError creates a cache backend error. Callers treat it as a
// cache miss, never as fatal.
func NewCacheError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeCache,
		Message:   message,
		Code:      "CACHE_ERROR",
		Retryable: true,
		Cause:     cause,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrorTypeInternal,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}
