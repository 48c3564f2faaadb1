package authflow

import (
	"errors"
	"fmt"
)

var (
	// ErrOtpExpired is an exported constant or variable used by the authentication flow engine.
	ErrOtpExpired = errors.New("otp expired")
	// ErrOtpMismatch is an exported constant or variable used by the authentication flow engine.
	ErrOtpMismatch = errors.New("otp mismatch")
	// ErrOtpConsumed is an exported constant or variable used by the authentication flow engine.
	ErrOtpConsumed = errors.New("otp session already consumed")
	// ErrResendLimitExceeded is an exported constant or variable used by the authentication flow engine.
	ErrResendLimitExceeded = errors.New("resend limit reached")
	// ErrBackendUnavailable is the transient-error class: a network or backend
	// failure that the user may retry. No automatic retry is performed.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrConsentRequired is an exported constant or variable used by the authentication flow engine.
	ErrConsentRequired = errors.New("you must accept terms & privacy")
	// ErrRequestRateLimited is an exported constant or variable used by the authentication flow engine.
	ErrRequestRateLimited = errors.New("otp request rate limited")
	// ErrFlowClosed is an exported constant or variable used by the authentication flow engine.
	ErrFlowClosed = errors.New("flow closed")
	// ErrFlowState is returned when an operation is invoked from a state that
	// does not permit it. The flow remains in its prior state.
	ErrFlowState = errors.New("operation not valid in current flow state")
	// ErrRequestInFlight is an exported constant or variable used by the authentication flow engine.
	ErrRequestInFlight = errors.New("external request already in flight")
	// ErrLocationInvalid is an exported constant or variable used by the authentication flow engine.
	ErrLocationInvalid = errors.New("location value not in reference set")
	// ErrLocationIncomplete is an exported constant or variable used by the authentication flow engine.
	ErrLocationIncomplete = errors.New("location selection incomplete")
	// ErrIdentityNotFound is an exported constant or variable used by the authentication flow engine.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication flow engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEngineNotReady is an exported constant or variable used by the authentication flow engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// FieldError is a local, pre-submission validation failure tied to a single
// input field. Field errors are resolved by the user and never reach the
// network.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewFieldError describes the newfielderror operation and its observable behavior.
//
// NewFieldError may return an error when input validation, dependency calls, or security checks fail.
// NewFieldError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// IsFieldError reports whether err is a [FieldError] and returns it.
func IsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
