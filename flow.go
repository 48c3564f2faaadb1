package authflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FlowState is the position of a [Flow] in the authentication lifecycle.
type FlowState uint8

const (
	// StatePhoneEntry is an exported constant or variable used by the authentication flow engine.
	StatePhoneEntry FlowState = iota
	// StateOtpPending is an exported constant or variable used by the authentication flow engine.
	StateOtpPending
	// StateRegistration is an exported constant or variable used by the authentication flow engine.
	StateRegistration
	// StateAuthenticated is an exported constant or variable used by the authentication flow engine.
	StateAuthenticated
	// StateClosed is an exported constant or variable used by the authentication flow engine.
	StateClosed
)

// String describes the string operation and its observable behavior.
func (s FlowState) String() string {
	switch s {
	case StatePhoneEntry:
		return "phone_entry"
	case StateOtpPending:
		return "otp_pending"
	case StateRegistration:
		return "registration"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Flow is one user's pass through the phone-first authentication lifecycle:
//
//	PhoneEntry → OtpPending → Registration → Authenticated
//	                       ↘ Authenticated (existing account)
//	any state → Closed
//
// Every method is safe for concurrent use; operations are serialized by an
// internal mutex. Calls that reach an external collaborator release the
// mutex for the duration of the call and re-check the flow's generation
// before applying the outcome, so a response that arrives after the flow
// moved on — a resend replaced the session, the user changed the number,
// the flow was closed — is discarded without touching state.
type Flow struct {
	engine *Engine

	mu         sync.Mutex
	id         string
	state      FlowState
	gen        uint64
	inFlight   bool
	phoneInput string
	session    OtpSession
	hasSession bool
	buffer     *CodeBuffer
	selector   *LocationSelector
	draft      RegistrationDraft
	identity   Identity
}

// NewFlow starts a fresh flow in the PhoneEntry state.
func (e *Engine) NewFlow() *Flow {
	f := &Flow{
		engine: e,
		id:     uuid.NewString(),
		state:  StatePhoneEntry,
		buffer: NewCodeBuffer(e.config.Code.Slots),
	}
	if e.locations != nil {
		f.selector = NewLocationSelector(e.locations)
	}
	return f
}

// ID returns the flow's stable identifier, used in audit records.
func (f *Flow) ID() string {
	return f.id
}

// State returns the current lifecycle state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// bump invalidates any response still in flight against the prior state.
// Callers must hold f.mu.
func (f *Flow) bump() {
	f.gen++
}

func (f *Flow) transition(next FlowState) {
	f.state = next
	f.bump()
}

/*
====================================
PHONE ENTRY
====================================
*/

// SetPhoneInput replaces the raw phone entry. Input is capped at the
// canonical length counted in digits; formatting characters pass through
// and are stripped at submission.
func (f *Flow) SetPhoneInput(raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePhoneEntry {
		return f.stateErr()
	}
	f.phoneInput = LimitRawPhone(raw, f.engine.config.Phone.Length)
	return nil
}

// PhoneInput returns the raw entry as last set.
func (f *Flow) PhoneInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phoneInput
}

// Phone returns the canonical form of the current entry.
func (f *Flow) Phone() PhoneNumber {
	f.mu.Lock()
	defer f.mu.Unlock()
	return NormalizePhone(f.phoneInput)
}

// SubmitPhone validates the canonical phone and requests code delivery.
// On success the flow holds a live session and moves to OtpPending. On any
// failure it stays in PhoneEntry with no session. A second submission while
// one is outstanding is rejected with ErrRequestInFlight.
func (f *Flow) SubmitPhone(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StatePhoneEntry {
		defer f.mu.Unlock()
		return f.stateErr()
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	phone := NormalizePhone(f.phoneInput)
	if !f.engine.validPhone(phone) {
		f.mu.Unlock()
		return NewFieldError(FieldPhone, msgPhoneLength)
	}
	f.inFlight = true
	gen := f.gen
	f.mu.Unlock()

	sess, err := f.engine.issueSession(ctx, phone)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.gen != gen {
		return f.discardStale(ctx, phone, sess.ID)
	}
	if err != nil {
		return err
	}
	f.session = sess
	f.hasSession = true
	f.buffer.Clear()
	f.transition(StateOtpPending)
	return nil
}

/*
====================================
CODE ENTRY (OtpPending)
====================================
*/

// EnterCodeDigit forwards a keystroke to the segmented code input.
func (f *Flow) EnterCodeDigit(slot int, raw string) error {
	return f.codeEdit(func() { f.buffer.SetDigit(slot, raw) })
}

// CodeBackspace forwards a backspace at the given slot.
func (f *Flow) CodeBackspace(slot int) error {
	return f.codeEdit(func() { f.buffer.Backspace(slot) })
}

// CodeArrowLeft moves code-input focus one slot left.
func (f *Flow) CodeArrowLeft(slot int) error {
	return f.codeEdit(func() { f.buffer.ArrowLeft(slot) })
}

// CodeArrowRight moves code-input focus one slot right.
func (f *Flow) CodeArrowRight(slot int) error {
	return f.codeEdit(func() { f.buffer.ArrowRight(slot) })
}

// PasteCode distributes pasted text across the code slots starting at the
// given slot. Non-digits are ignored.
func (f *Flow) PasteCode(slot int, text string) error {
	return f.codeEdit(func() { f.buffer.Paste(slot, text) })
}

func (f *Flow) codeEdit(edit func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateOtpPending {
		return f.stateErr()
	}
	edit()
	return nil
}

// EnteredCode returns the concatenated digits currently in the buffer.
func (f *Flow) EnteredCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffer.Code()
}

// CodeFocus returns the slot index that currently holds input focus.
func (f *Flow) CodeFocus() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffer.Focus()
}

// Session returns a copy of the live session, if any.
func (f *Flow) Session() (OtpSession, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.hasSession
}

// Remaining returns the time left on the live session, derived from the
// wall clock at the moment of the call.
func (f *Flow) Remaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasSession {
		return 0
	}
	return f.session.Remaining(f.engine.now())
}

// CountdownDisplay returns the remaining session time as "m:ss".
func (f *Flow) CountdownDisplay() string {
	return FormatCountdown(f.Remaining())
}

// Countdown emits the formatted remaining session time ("m:ss") on every
// tick of the given interval, starting with the current value. The channel
// closes when the flow leaves OtpPending, the session runs out, or the
// context is cancelled. Each emission re-derives the remainder from the wall
// clock, so a paused consumer never sees drift.
func (f *Flow) Countdown(ctx context.Context, interval time.Duration) <-chan string {
	if interval <= 0 {
		interval = time.Second
	}
	out := make(chan string, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			f.mu.Lock()
			active := f.state == StateOtpPending && f.hasSession
			remaining := time.Duration(0)
			if active {
				remaining = f.session.Remaining(f.engine.now())
			}
			f.mu.Unlock()
			if !active {
				return
			}

			select {
			case out <- FormatCountdown(remaining):
			default:
			}
			if remaining == 0 {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// ResendsLeft returns the resend budget remaining on the live session.
func (f *Flow) ResendsLeft() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasSession {
		return 0
	}
	return f.session.ResendsLeft()
}

// Resend replaces the live session with a freshly issued one: new code,
// full TTL, resend counter advanced. When the budget is exhausted the
// session is left untouched and ErrResendLimitExceeded is returned.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateOtpPending {
		defer f.mu.Unlock()
		return f.stateErr()
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	sess := f.session
	f.inFlight = true
	gen := f.gen
	f.mu.Unlock()

	next, err := f.engine.resendSession(ctx, sess)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.gen != gen {
		return f.discardStale(ctx, sess.Phone, sess.ID)
	}
	if err != nil {
		return err
	}
	f.session = next
	f.buffer.Clear()
	f.bump()
	return nil
}

// SubmitCode verifies the entered code against the live session. An
// existing account authenticates the flow directly; an unknown phone moves
// it to Registration with the verified phone pre-filled. Expiry and
// mismatch leave the flow in OtpPending so the user can resend or retry.
func (f *Flow) SubmitCode(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateOtpPending {
		defer f.mu.Unlock()
		return f.stateErr()
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	sess := f.session
	candidate := f.buffer.Code()
	f.inFlight = true
	gen := f.gen
	f.mu.Unlock()

	started := f.engine.now()
	consumed, result, err := f.engine.verifySession(ctx, sess, candidate)
	f.engine.observeVerifyLatency(f.engine.now().Sub(started))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.gen != gen || f.session.ID != sess.ID {
		return f.discardStale(ctx, sess.Phone, sess.ID)
	}
	if err != nil {
		return err
	}
	f.session = consumed
	f.buffer.Clear()
	if result.Exists {
		f.authenticate(ctx, result.Identity, auditEventLoginSuccess)
		return nil
	}
	f.draft = RegistrationDraft{Phone: sess.Phone}
	if f.selector != nil {
		f.selector.Reset()
	}
	f.transition(StateRegistration)
	return nil
}

// ChangePhone abandons the live session and returns to PhoneEntry so a
// different number can be entered. Any in-flight response against the old
// session becomes stale.
func (f *Flow) ChangePhone() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateOtpPending {
		return f.stateErr()
	}
	f.session = OtpSession{}
	f.hasSession = false
	f.buffer.Clear()
	f.transition(StatePhoneEntry)
	return nil
}

/*
====================================
REGISTRATION
====================================
*/

// Draft returns a copy of the registration draft.
func (f *Flow) Draft() (RegistrationDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateRegistration {
		return RegistrationDraft{}, f.stateErr()
	}
	return f.draft, nil
}

// SetName updates the draft full name.
func (f *Flow) SetName(name string) error {
	return f.draftEdit(func() { f.draft.Name = name })
}

// SetEmail updates the draft email.
func (f *Flow) SetEmail(email string) error {
	return f.draftEdit(func() { f.draft.Email = email })
}

// SetPassword updates the draft password.
func (f *Flow) SetPassword(password string) error {
	return f.draftEdit(func() { f.draft.Password = password })
}

// SetConfirmPassword updates the draft password confirmation.
func (f *Flow) SetConfirmPassword(password string) error {
	return f.draftEdit(func() { f.draft.ConfirmPassword = password })
}

// SetConsent records the terms checkbox state.
func (f *Flow) SetConsent(accepted bool) error {
	return f.draftEdit(func() { f.draft.Consent = accepted })
}

func (f *Flow) draftEdit(edit func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateRegistration {
		return f.stateErr()
	}
	edit()
	return nil
}

// Countries lists the location dataset's countries.
func (f *Flow) Countries() []LocationOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selector == nil {
		return nil
	}
	return f.selector.Countries()
}

// States lists the states of the draft's selected country.
func (f *Flow) States() []LocationOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selector == nil {
		return nil
	}
	return f.selector.States()
}

// Cities lists the cities of the draft's selected country and state.
func (f *Flow) Cities() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selector == nil {
		return nil
	}
	return f.selector.Cities()
}

// SetCountry selects the draft country, clearing state and city.
func (f *Flow) SetCountry(code string) error {
	return f.locationEdit(func() error { return f.selector.SetCountry(code) })
}

// SetState selects the draft state, clearing the city.
func (f *Flow) SetState(code string) error {
	return f.locationEdit(func() error { return f.selector.SetState(code) })
}

// SetCity selects the draft city.
func (f *Flow) SetCity(name string) error {
	return f.locationEdit(func() error { return f.selector.SetCity(name) })
}

func (f *Flow) locationEdit(edit func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateRegistration {
		return f.stateErr()
	}
	if f.selector == nil {
		return ErrLocationInvalid
	}
	if err := edit(); err != nil {
		return err
	}
	f.draft.Location = f.selector.Selection()
	return nil
}

// SubmitRegistration validates the draft atomically and, when it passes,
// persists the account and authenticates the flow. A non-empty returned map
// carries the per-field failures and means no submission was attempted.
// Consent is reported through ErrConsentRequired, never through the map.
func (f *Flow) SubmitRegistration(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	if f.state != StateRegistration {
		defer f.mu.Unlock()
		return nil, f.stateErr()
	}
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	draft := f.draft
	if fieldErrors := ValidateDraft(draft, f.engine.config.Registration); len(fieldErrors) > 0 {
		f.mu.Unlock()
		f.engine.metricInc(MetricRegistrationRejected)
		return fieldErrors, nil
	}
	if err := CheckConsent(draft); err != nil {
		f.mu.Unlock()
		f.engine.metricInc(MetricRegistrationRejected)
		return nil, err
	}
	f.inFlight = true
	gen := f.gen
	f.mu.Unlock()

	identity, err := f.engine.createAccount(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.gen != gen {
		return nil, f.discardStale(ctx, draft.Phone, "")
	}
	if err != nil {
		f.engine.metricInc(MetricRegistrationRejected)
		f.engine.emitAudit(ctx, auditEventRegistrationRejected, false, draft.Phone, "", err, nil)
		return nil, err
	}
	f.engine.metricInc(MetricRegistrationCompleted)
	f.authenticate(ctx, identity, auditEventRegistrationCompleted)
	return nil, nil
}

/*
====================================
CREDENTIAL LOGIN
====================================
*/

// Login authenticates by credentials, bypassing phone verification. It is
// available only from PhoneEntry and only when a credential backend is
// wired; demo and operator accounts use this path.
func (f *Flow) Login(ctx context.Context, email, password string, role Role) error {
	f.mu.Lock()
	if f.state != StatePhoneEntry {
		defer f.mu.Unlock()
		return f.stateErr()
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	if f.engine.loginBackend == nil {
		f.mu.Unlock()
		return ErrEngineNotReady
	}
	f.inFlight = true
	gen := f.gen
	f.mu.Unlock()

	identity, err := f.engine.loginBackend.Login(ctx, email, password, role)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.gen != gen {
		return f.discardStale(ctx, "", "")
	}
	if err != nil {
		f.engine.metricInc(MetricLoginFailure)
		f.engine.emitAudit(ctx, auditEventLoginFailure, false, "", "", err, func() map[string]string {
			return map[string]string{"email": email}
		})
		return err
	}
	f.engine.metricInc(MetricLoginSuccess)
	f.authenticate(ctx, identity, auditEventLoginSuccess)
	return nil
}

/*
====================================
TERMINAL STATES
====================================
*/

// Identity returns the authenticated identity once the flow reaches
// Authenticated.
func (f *Flow) Identity() (Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAuthenticated {
		return Identity{}, false
	}
	return f.identity, true
}

// Close terminates the flow from any state. Closing is idempotent; the
// first close invalidates in-flight responses, fires the close hook, and
// moves the flow to Closed.
func (f *Flow) Close(ctx context.Context) {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return
	}
	phone := f.session.Phone
	sessID := f.session.ID
	f.session = OtpSession{}
	f.hasSession = false
	f.buffer.Clear()
	f.draft = RegistrationDraft{}
	f.transition(StateClosed)
	f.mu.Unlock()

	f.engine.metricInc(MetricFlowClosed)
	f.engine.emitAudit(ctx, auditEventFlowClosed, true, phone, sessID, nil, nil)
	if f.engine.hooks.OnClose != nil {
		f.engine.hooks.OnClose()
	}
}

// authenticate commits the terminal success transition. Callers hold f.mu.
func (f *Flow) authenticate(ctx context.Context, identity Identity, event string) {
	f.identity = identity
	f.transition(StateAuthenticated)
	f.engine.emitAudit(ctx, event, true, identity.Phone, "", nil, func() map[string]string {
		return map[string]string{"role": identity.Role.String()}
	})
	if f.engine.hooks.OnAuthSuccess != nil {
		f.engine.hooks.OnAuthSuccess(identity)
	}
}

// discardStale records that a response arrived after the flow moved on.
// The flow state is untouched. Callers hold f.mu.
func (f *Flow) discardStale(ctx context.Context, phone PhoneNumber, sessionID string) error {
	f.engine.metricInc(MetricStaleResponseDiscarded)
	f.engine.emitAudit(ctx, auditEventStaleResponseDiscarded, false, phone, sessionID, nil, nil)
	if f.state == StateClosed {
		return ErrFlowClosed
	}
	return ErrFlowState
}

func (f *Flow) stateErr() error {
	if f.state == StateClosed {
		return ErrFlowClosed
	}
	return ErrFlowState
}

// FormatCountdown renders a duration as "m:ss", the way session countdowns
// are displayed. Negative durations render as 0:00.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
