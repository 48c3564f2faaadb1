package authflow

import (
	"context"
	"strings"
	"sync"

	"github.com/Saroj-Kumarr/ribitto-authflow/password"
	"github.com/google/uuid"
)

// DemoDirectory is an in-memory identity directory for demos and tests. It
// implements [LoginBackend], [IdentityLookup], and [AccountCreator], so a
// single instance can back credential login, phone resolution after OTP
// verification, and registration persistence.
//
// It ships pre-provisioned with one account per role tier; the role is
// inferred from the email local part, matching the platform's demo
// convention. Passwords are argon2id-hashed even here — the directory
// never stores plaintext.
type DemoDirectory struct {
	hasher *password.Argon2

	mu      sync.RWMutex
	byEmail map[string]demoAccount
	byPhone map[PhoneNumber]string // phone → email
}

type demoAccount struct {
	identity     Identity
	passwordHash string
}

// DemoPassword is the password provisioned for the bundled demo accounts.
const DemoPassword = "demo1234"

// NewDemoDirectory creates the directory and provisions the demo accounts
// user@demo.com, kyc@demo.com, and admin@demo.com with [DemoPassword].
func NewDemoDirectory(hasher *password.Argon2) (*DemoDirectory, error) {
	d := &DemoDirectory{
		hasher:  hasher,
		byEmail: make(map[string]demoAccount),
		byPhone: make(map[PhoneNumber]string),
	}

	seeds := []Identity{
		{
			ID:        "demo-registered",
			Email:     "user@demo.com",
			Phone:     "9000000001",
			Role:      RoleRegistered,
			KycStatus: KycNotStarted,
		},
		{
			ID:            "demo-kyc",
			Email:         "kyc@demo.com",
			Phone:         "9000000002",
			Role:          RoleKyc,
			KycStatus:     KycApproved,
			WalletBalance: 125000,
		},
		{
			ID:        "demo-admin",
			Email:     "admin@demo.com",
			Phone:     "9000000003",
			Role:      RoleAdmin,
			KycStatus: KycApproved,
		},
	}
	for _, id := range seeds {
		id.Name = emailLocalPart(id.Email)
		if err := d.provision(id, DemoPassword); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *DemoDirectory) provision(identity Identity, plaintext string) error {
	hash, err := d.hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.byEmail[strings.ToLower(identity.Email)] = demoAccount{
		identity:     identity,
		passwordHash: hash,
	}
	if identity.Phone != "" {
		d.byPhone[identity.Phone] = strings.ToLower(identity.Email)
	}
	return nil
}

// Login authenticates by email and password. The requested role must match
// the account's provisioned role; a role mismatch is reported as invalid
// credentials, not as a distinct condition, so the response does not leak
// which part failed.
func (d *DemoDirectory) Login(ctx context.Context, email, pass string, role Role) (Identity, error) {
	d.mu.RLock()
	account, ok := d.byEmail[strings.ToLower(email)]
	d.mu.RUnlock()
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}

	match, err := d.hasher.Verify(pass, account.passwordHash)
	if err != nil || !match {
		return Identity{}, ErrInvalidCredentials
	}
	if account.identity.Role != role {
		return Identity{}, ErrInvalidCredentials
	}

	return account.identity, nil
}

// LookupPhone resolves a canonical phone to its account, if provisioned.
func (d *DemoDirectory) LookupPhone(ctx context.Context, phone PhoneNumber) (Identity, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	email, ok := d.byPhone[phone]
	if !ok {
		return Identity{}, false, nil
	}
	account, ok := d.byEmail[email]
	if !ok {
		return Identity{}, false, nil
	}
	return account.identity, true, nil
}

// CreateAccount persists a validated registration draft as a registered
// account and returns the resulting identity.
func (d *DemoDirectory) CreateAccount(ctx context.Context, draft RegistrationDraft) (Identity, error) {
	identity := Identity{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Role:      RoleRegistered,
		KycStatus: KycNotStarted,
	}
	if err := d.provision(identity, draft.Password); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
