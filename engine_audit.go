package authflow

import (
	"context"
	"errors"
)

const (
	auditEventOtpIssued              = "otp_issue_success"
	auditEventOtpIssueFailure        = "otp_issue_failure"
	auditEventOtpResent              = "otp_resend_success"
	auditEventOtpResendLimited       = "otp_resend_limited"
	auditEventOtpVerifySuccess       = "otp_verify_success"
	auditEventOtpVerifyFailure       = "otp_verify_failure"
	auditEventLoginSuccess           = "login_success"
	auditEventLoginFailure           = "login_failure"
	auditEventRegistrationCompleted  = "registration_completed"
	auditEventRegistrationRejected   = "registration_rejected"
	auditEventFlowClosed             = "flow_closed"
	auditEventRateLimitTriggered     = "rate_limit_triggered"
	auditEventStaleResponseDiscarded = "stale_response_discarded"
)

// AuditErrorCode defines a public type used by authflow APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrOtpExpired         AuditErrorCode = "otp_expired"
	auditErrOtpMismatch        AuditErrorCode = "otp_mismatch"
	auditErrOtpConsumed        AuditErrorCode = "otp_consumed"
	auditErrResendLimit        AuditErrorCode = "resend_limit_exceeded"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrConsentRequired    AuditErrorCode = "consent_required"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrIdentityNotFound   AuditErrorCode = "identity_not_found"
	auditErrValidation         AuditErrorCode = "validation_failed"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	phone PhoneNumber,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Phone:     string(phone),
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrOtpExpired):
		return auditErrOtpExpired
	case errors.Is(err, ErrOtpMismatch):
		return auditErrOtpMismatch
	case errors.Is(err, ErrOtpConsumed):
		return auditErrOtpConsumed
	case errors.Is(err, ErrResendLimitExceeded):
		return auditErrResendLimit
	case errors.Is(err, ErrRequestRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrConsentRequired):
		return auditErrConsentRequired
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrIdentityNotFound):
		return auditErrIdentityNotFound
	case errors.Is(err, ErrBackendUnavailable):
		return auditErrUnavailable
	default:
		if _, ok := IsFieldError(err); ok {
			return auditErrValidation
		}
		return auditErrInternal
	}
}
