package authflow

import (
	"context"
)

// Role is the closed set of identity roles. Free-form role strings are not
// accepted anywhere in the engine; switches over Role must be exhaustive.
type Role uint8

const (
	// RoleGuest is an exported constant or variable used by the authentication flow engine.
	RoleGuest Role = iota
	// RoleRegistered is an exported constant or variable used by the authentication flow engine.
	RoleRegistered
	// RoleKyc is an exported constant or variable used by the authentication flow engine.
	RoleKyc
	// RoleAdmin is an exported constant or variable used by the authentication flow engine.
	RoleAdmin
)

// String describes the string operation and its observable behavior.
func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleRegistered:
		return "registered"
	case RoleKyc:
		return "kyc"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole maps a stored role string onto the closed [Role] set.
// Unrecognized values resolve to RoleGuest and ok=false.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "guest", "public":
		return RoleGuest, true
	case "registered":
		return RoleRegistered, true
	case "kyc":
		return RoleKyc, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleGuest, false
	}
}

// KycStatus is the verification standing carried by an identity.
type KycStatus uint8

const (
	// KycNotStarted is an exported constant or variable used by the authentication flow engine.
	KycNotStarted KycStatus = iota
	// KycPending is an exported constant or variable used by the authentication flow engine.
	KycPending
	// KycApproved is an exported constant or variable used by the authentication flow engine.
	KycApproved
	// KycRejected is an exported constant or variable used by the authentication flow engine.
	KycRejected
)

// String describes the string operation and its observable behavior.
func (s KycStatus) String() string {
	switch s {
	case KycNotStarted:
		return "not_started"
	case KycPending:
		return "pending"
	case KycApproved:
		return "approved"
	case KycRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Identity is an authenticated account as reported by the identity backend.
// WalletBalance is denominated in the platform's display currency and is
// meaningful only for KYC-approved identities.
type Identity struct {
	ID            string
	Name          string
	Email         string
	Phone         PhoneNumber
	Role          Role
	KycStatus     KycStatus
	WalletBalance int64
}

// CanInvest reports whether the identity's role and KYC standing permit
// investment actions. Role gating is exhaustive over the closed Role set.
func (id Identity) CanInvest() bool {
	switch id.Role {
	case RoleKyc, RoleAdmin:
		return id.KycStatus == KycApproved
	case RoleGuest, RoleRegistered:
		return false
	default:
		return false
	}
}

// VerifyResult is returned by [OtpBackend.VerifyOtp] and by identity lookup
// after a local verification. Exists reports whether the phone maps to an
// existing account; Identity is meaningful only when Exists is true.
type VerifyResult struct {
	Exists   bool
	Identity Identity
}

// OtpBackend is the remote authoritative verification contract. RequestOtp
// triggers out-of-band code delivery — the core never learns the code via
// this path. VerifyOtp supersedes any local code comparison.
type OtpBackend interface {
	RequestOtp(ctx context.Context, phone PhoneNumber) error
	VerifyOtp(ctx context.Context, phone PhoneNumber, code string) (VerifyResult, error)
}

// CodeSender delivers a generated code out of band (SMS gateway, console in
// development). Used only by the bundled self-hosted backend; a failed send
// must be reported so that no session is created for an undelivered code.
type CodeSender interface {
	SendCode(ctx context.Context, phone PhoneNumber, code string) error
}

// IdentityLookup resolves a verified phone to an existing account, if any.
type IdentityLookup interface {
	LookupPhone(ctx context.Context, phone PhoneNumber) (Identity, bool, error)
}

// LoginBackend authenticates pre-provisioned identities by credentials,
// bypassing OTP. Used for demo and operator accounts only.
type LoginBackend interface {
	Login(ctx context.Context, email, password string, role Role) (Identity, error)
}

// Hooks are optional notification callbacks into the hosting application.
// Nil hooks and nil individual functions are ignored.
type Hooks struct {
	OnAuthSuccess func(identity Identity)
	OnClose       func()
}

// LocationOption is one entry of the location reference dataset.
type LocationOption struct {
	Code string
	Name string
}

// LocationProvider is the static location reference contract: synchronous
// lookups over a country → states → cities hierarchy.
type LocationProvider interface {
	Countries() []LocationOption
	StatesOf(country string) []LocationOption
	CitiesOf(country, state string) []string
}

// AccountCreator persists a validated registration draft. Persistence is a
// collaborator responsibility; the engine only invokes the contract after
// the draft passed validation and consent.
type AccountCreator interface {
	CreateAccount(ctx context.Context, draft RegistrationDraft) (Identity, error)
}
