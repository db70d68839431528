package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by stores for unknown ids.
	ErrNotFound = errors.New("not found")

	// ErrProviderUnavailable means the embedding provider could not serve
	// the request (network failure, 5xx, open circuit).
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrRateLimited means the embedding provider rejected the request
	// because of rate limits.
	ErrRateLimited = errors.New("embedding provider rate limited")

	// ErrInvalidVector is returned for vectors with NaN or Inf components.
	ErrInvalidVector = errors.New("invalid embedding vector")

	// ErrDimensionMismatch is returned when two vectors cannot be compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ValidationError rejects caller input before scoring.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// RateLimitError carries the provider's retry hint.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: %s (retry after %s)", ErrRateLimited, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%s: %s", ErrRateLimited, e.Message)
}

// Is makes errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// IsProviderError reports whether err is a recoverable embedding provider
// failure.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrRateLimited)
}
