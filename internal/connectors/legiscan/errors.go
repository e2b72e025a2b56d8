package legiscan

import (
	"errors"
	"fmt"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

// AuthError indicates the API rejected the credentials. Never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("legiscan: authentication rejected (%d): %s", e.StatusCode, e.Message)
}

func (e *AuthError) Unwrap() error { return domain.ErrAuthFailed }

// QuotaExceededError indicates the rate-limit retry budget for one
// call was exhausted. Fatal for that call; not retried further up.
type QuotaExceededError struct {
	Attempts int
	Op       string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("legiscan: %s: rate limited after %d attempts", e.Op, e.Attempts)
}

func (e *QuotaExceededError) Unwrap() error { return domain.ErrQuotaExceeded }

// APIError represents a payload-level error or an HTTP failure that is
// not an auth or rate-limit rejection.
type APIError struct {
	StatusCode int
	Message    string
	Op         string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("legiscan: %s: API error %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("legiscan: %s: API error: %s", e.Op, e.Message)
}

// TransportError wraps a network-level failure after the bounded
// retry policy gave up.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("legiscan: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return domain.ErrUnavailable }

// IsAuthError checks if the error indicates a credential rejection.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsQuotaExceeded checks if the error indicates an exhausted
// rate-limit retry budget.
func IsQuotaExceeded(err error) bool {
	var qErr *QuotaExceededError
	return errors.As(err, &qErr)
}

// IsUnavailable checks if the error indicates a non-recoverable
// transport failure.
func IsUnavailable(err error) bool {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}
