package contract

import (
	"errors"
	"fmt"
)

// ValidationError describes a request that can never succeed as given,
// such as an inverted time range or an unknown granularity. It is
// reported before any partial output is produced.
type ValidationError struct {
	Field  string
	Reason string
}

// Error renders the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DataIntegrityError describes event data that cannot be resolved into
// a consistent state timeline, such as an event without a timestamp.
type DataIntegrityError struct {
	ItemID int
	Reason string
}

// Error renders the integrity failure.
func (e DataIntegrityError) Error() string {
	if e.ItemID > 0 {
		return fmt.Sprintf("inconsistent history for item %d: %s", e.ItemID, e.Reason)
	}
	return fmt.Sprintf("inconsistent history: %s", e.Reason)
}

// AuthError describes a credential rejection from the remote API.
// Status carries the HTTP status code that triggered it.
type AuthError struct {
	Status int
	Detail string
}

// Error renders the credential rejection.
func (e AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("authentication failed (status %d)", e.Status)
}

// NetworkError wraps a transport-level failure such as a timeout or
// connection refusal. Op names the request that failed.
type NetworkError struct {
	Op  string
	Err error
}

// Error renders the transport failure.
func (e NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying transport error for errors.Is checks.
func (e NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae AuthError
	return errors.As(err, &ae)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne NetworkError
	return errors.As(err, &ne)
}
