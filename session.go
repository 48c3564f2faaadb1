package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Saroj-Kumarr/ribitto-authflow/internal"
	"github.com/google/uuid"
)

// OtpSession is the single authoritative record of one verification
// attempt. Issue and resend always produce a fresh session value — there is
// no partial mutation that could leave the resend counter and the code out
// of sync. A session is live while the TTL has not elapsed and it has not
// been consumed; a consumed or expired session can never verify again.
//
// The code field is populated only in self-hosted mode, where the engine
// generated the code itself. With a remote [OtpBackend] it stays empty and
// comparison is delegated.
type OtpSession struct {
	ID          string
	Phone       PhoneNumber
	IssuedAt    time.Time
	TTL         time.Duration
	ResendCount int
	MaxResend   int
	Consumed    bool

	code string
}

// ExpiresAt returns the instant the session stops being live.
func (s OtpSession) ExpiresAt() time.Time {
	return s.IssuedAt.Add(s.TTL)
}

// Live reports whether the session can still verify at the given instant.
func (s OtpSession) Live(now time.Time) bool {
	return !s.Consumed && now.Before(s.ExpiresAt())
}

// Remaining returns the time left before expiry, derived from the wall
// clock — never from a decremented counter — so it is immune to missed
// ticks and paused execution.
func (s OtpSession) Remaining(now time.Time) time.Duration {
	left := s.ExpiresAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// ResendsLeft returns how many resends the session still permits.
func (s OtpSession) ResendsLeft() int {
	left := s.MaxResend - s.ResendCount
	if left < 0 {
		return 0
	}
	return left
}

func newOtpSession(phone PhoneNumber, code string, cfg OTPConfig, now time.Time) OtpSession {
	return OtpSession{
		ID:        uuid.NewString(),
		Phone:     phone,
		IssuedAt:  now,
		TTL:       cfg.TTL,
		MaxResend: cfg.MaxResend,
		code:      code,
	}
}

// withResend returns the replacement session for a resend: fresh identity,
// fresh code, issuedAt reset, counter advanced. The receiver is unchanged
// when the limit is exhausted.
func (s OtpSession) withResend(code string, now time.Time) (OtpSession, error) {
	if s.ResendCount >= s.MaxResend {
		return s, ErrResendLimitExceeded
	}
	next := s
	next.ID = uuid.NewString()
	next.IssuedAt = now
	next.ResendCount = s.ResendCount + 1
	next.Consumed = false
	next.code = code
	return next, nil
}

// verifyLocal applies the one-shot verification gates against the locally
// held code: consumed, then expiry, then comparison. Expiry wins over a
// correct code. On success the returned session is the consumed copy.
func (s OtpSession) verifyLocal(candidate string, now time.Time) (OtpSession, error) {
	if s.Consumed {
		return s, ErrOtpConsumed
	}
	if !now.Before(s.ExpiresAt()) {
		return s, ErrOtpExpired
	}
	if candidate != s.code {
		return s, ErrOtpMismatch
	}
	consumed := s
	consumed.Consumed = true
	return consumed, nil
}

func validCodeFormat(candidate string, digits int) bool {
	if len(candidate) != digits {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}
	return true
}

/*
====================================
SESSION MANAGER (engine operations)
====================================
*/

// issueSession creates the first session for a phone. Delivery is delegated
// before any session exists: a failed request or send leaves no session
// behind and surfaces the transient-error class.
func (e *Engine) issueSession(ctx context.Context, phone PhoneNumber) (OtpSession, error) {
	code, err := e.deliverCode(ctx, phone)
	if err != nil {
		return OtpSession{}, err
	}
	sess := newOtpSession(phone, code, e.config.OTP, e.now())
	e.metricInc(MetricOtpIssued)
	e.emitAudit(ctx, auditEventOtpIssued, true, phone, sess.ID, nil, nil)
	return sess, nil
}

// resendSession replaces the session wholesale: new code, issuedAt reset,
// counter advanced. The resend budget is checked before any delivery so a
// rejected resend has no side effects.
func (e *Engine) resendSession(ctx context.Context, sess OtpSession) (OtpSession, error) {
	if sess.ResendCount >= sess.MaxResend {
		e.metricInc(MetricOtpResendLimited)
		e.emitAudit(ctx, auditEventOtpResendLimited, false, sess.Phone, sess.ID, ErrResendLimitExceeded, nil)
		return sess, ErrResendLimitExceeded
	}
	code, err := e.deliverCode(ctx, sess.Phone)
	if err != nil {
		return sess, err
	}
	next, err := sess.withResend(code, e.now())
	if err != nil {
		return sess, err
	}
	e.metricInc(MetricOtpResent)
	e.emitAudit(ctx, auditEventOtpResent, true, sess.Phone, next.ID, nil, func() map[string]string {
		return map[string]string{
			"resend_count": fmt.Sprintf("%d", next.ResendCount),
		}
	})
	return next, nil
}

// verifySession runs the one-shot verification: format gate, consumed and
// expiry gates, then code comparison — remote when an [OtpBackend] is
// wired, local otherwise. The returned session is the consumed copy on
// success and the unchanged input on every failure, so a mismatched
// session stays resendable until its budget runs out.
func (e *Engine) verifySession(ctx context.Context, sess OtpSession, candidate string) (OtpSession, VerifyResult, error) {
	if !validCodeFormat(candidate, e.config.OTP.Digits) {
		return sess, VerifyResult{}, NewFieldError(FieldCode, msgCodeFormat)
	}
	if sess.Consumed {
		return sess, VerifyResult{}, ErrOtpConsumed
	}
	now := e.now()
	if !now.Before(sess.ExpiresAt()) {
		e.metricInc(MetricOtpVerifyExpired)
		e.emitAudit(ctx, auditEventOtpVerifyFailure, false, sess.Phone, sess.ID, ErrOtpExpired, nil)
		return sess, VerifyResult{}, ErrOtpExpired
	}

	var result VerifyResult
	if e.backend != nil {
		res, err := e.backend.VerifyOtp(ctx, sess.Phone, candidate)
		if err != nil {
			return sess, VerifyResult{}, e.verifyFailure(ctx, sess, err)
		}
		result = res
	} else {
		if _, err := sess.verifyLocal(candidate, now); err != nil {
			return sess, VerifyResult{}, e.verifyFailure(ctx, sess, err)
		}
		identity, exists, err := e.identities.LookupPhone(ctx, sess.Phone)
		if err != nil {
			return sess, VerifyResult{}, e.verifyFailure(ctx, sess, fmt.Errorf("%w: %v", ErrBackendUnavailable, err))
		}
		result = VerifyResult{Exists: exists, Identity: identity}
	}

	consumed := sess
	consumed.Consumed = true
	consumed.code = ""
	e.metricInc(MetricOtpVerifySuccess)
	e.emitAudit(ctx, auditEventOtpVerifySuccess, true, sess.Phone, sess.ID, nil, func() map[string]string {
		return map[string]string{
			"identity_known": fmt.Sprintf("%t", result.Exists),
		}
	})
	return consumed, result, nil
}

func (e *Engine) verifyFailure(ctx context.Context, sess OtpSession, err error) error {
	switch {
	case errors.Is(err, ErrOtpMismatch):
		e.metricInc(MetricOtpVerifyMismatch)
	case errors.Is(err, ErrOtpExpired):
		e.metricInc(MetricOtpVerifyExpired)
	default:
		e.metricInc(MetricOtpVerifyFailure)
		if !errors.Is(err, ErrBackendUnavailable) && !errors.Is(err, ErrOtpConsumed) {
			err = fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	e.emitAudit(ctx, auditEventOtpVerifyFailure, false, sess.Phone, sess.ID, err, nil)
	return err
}

// deliverCode issues and delivers a fresh code. Remote mode returns an
// empty code — the backend owns it end to end. Self-hosted mode generates
// the code, hands it to the delivery collaborator, and returns it for the
// session value.
func (e *Engine) deliverCode(ctx context.Context, phone PhoneNumber) (string, error) {
	if err := e.checkRequestThrottle(ctx, phone); err != nil {
		return "", err
	}

	if e.backend != nil {
		if err := e.backend.RequestOtp(ctx, phone); err != nil {
			e.metricInc(MetricOtpIssueFailure)
			e.emitAudit(ctx, auditEventOtpIssueFailure, false, phone, "", err, nil)
			if errors.Is(err, ErrRequestRateLimited) {
				return "", err
			}
			return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return "", nil
	}

	code, err := internal.NewOTP(e.config.OTP.Digits)
	if err != nil {
		e.metricInc(MetricOtpIssueFailure)
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := e.codeSender.SendCode(ctx, phone, code); err != nil {
		e.metricInc(MetricOtpIssueFailure)
		e.emitAudit(ctx, auditEventOtpIssueFailure, false, phone, "", err, nil)
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return code, nil
}

func (e *Engine) checkRequestThrottle(ctx context.Context, phone PhoneNumber) error {
	if e.requestLimiter == nil {
		return nil
	}
	if err := e.requestLimiter.Check(ctx, phone, clientIPFromContext(ctx)); err != nil {
		if errors.Is(err, errThrottleLimited) {
			e.metricInc(MetricRequestRateLimited)
			e.emitAudit(ctx, auditEventRateLimitTriggered, false, phone, "", ErrRequestRateLimited, nil)
			return ErrRequestRateLimited
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
