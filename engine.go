package authflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Engine defines a public type used by authflow APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config         Config
	backend        OtpBackend
	codeSender     CodeSender
	identities     IdentityLookup
	loginBackend   LoginBackend
	accounts       AccountCreator
	locations      LocationProvider
	hooks          Hooks
	requestLimiter *otpRequestLimiter
	audit          *auditDispatcher
	metrics        *Metrics
	now            func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observeVerifyLatency(d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricVerifyLatency, d)
}

// DisplayPhone returns the phone with the configured display prefix, the
// form the hosting UI renders. The prefix is never part of the canonical
// number.
func (e *Engine) DisplayPhone(phone PhoneNumber) string {
	if e.config.Phone.DisplayPrefix == "" {
		return string(phone)
	}
	return e.config.Phone.DisplayPrefix + " " + string(phone)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// createAccount persists a validated draft. Without a wired [AccountCreator]
// the engine materializes the identity locally with the registered role, the
// standing of a fresh signup before any KYC submission.
func (e *Engine) createAccount(ctx context.Context, draft RegistrationDraft) (Identity, error) {
	if e.accounts != nil {
		return e.accounts.CreateAccount(ctx, draft)
	}
	return Identity{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Role:      RoleRegistered,
		KycStatus: KycNotStarted,
	}, nil
}
