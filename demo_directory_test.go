package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/Saroj-Kumarr/ribitto-authflow/password"
)

func newTestDirectory(t *testing.T) *DemoDirectory {
	t.Helper()

	// Minimal argon2 cost so test runs stay fast.
	hasher, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	dir, err := NewDemoDirectory(hasher)
	if err != nil {
		t.Fatalf("NewDemoDirectory: %v", err)
	}
	return dir
}

func TestDemoDirectoryLoginPerRole(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	cases := []struct {
		email string
		role  Role
	}{
		{"user@demo.com", RoleRegistered},
		{"kyc@demo.com", RoleKyc},
		{"admin@demo.com", RoleAdmin},
	}
	for _, tc := range cases {
		identity, err := dir.Login(ctx, tc.email, DemoPassword, tc.role)
		if err != nil {
			t.Fatalf("login %s: %v", tc.email, err)
		}
		if identity.Role != tc.role {
			t.Fatalf("login %s: expected role %s, got %s", tc.email, tc.role, identity.Role)
		}
	}

	// Email lookup is case-insensitive.
	if _, err := dir.Login(ctx, "User@Demo.COM", DemoPassword, RoleRegistered); err != nil {
		t.Fatalf("case-insensitive login failed: %v", err)
	}
}

func TestDemoDirectoryLoginRejections(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	if _, err := dir.Login(ctx, "user@demo.com", "wrong-pass", RoleRegistered); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := dir.Login(ctx, "nobody@demo.com", DemoPassword, RoleRegistered); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	// Right credentials, wrong role tier: indistinguishable from a bad password.
	if _, err := dir.Login(ctx, "user@demo.com", DemoPassword, RoleAdmin); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("role mismatch: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDemoDirectoryLookupPhone(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	identity, ok, err := dir.LookupPhone(ctx, "9000000002")
	if err != nil || !ok {
		t.Fatalf("LookupPhone: ok=%v err=%v", ok, err)
	}
	if identity.Email != "kyc@demo.com" || identity.WalletBalance != 125000 {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, ok, err := dir.LookupPhone(ctx, "9999999999"); err != nil || ok {
		t.Fatalf("unknown phone: ok=%v err=%v", ok, err)
	}
}

func TestDemoDirectoryCreateAccount(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	identity, err := dir.CreateAccount(ctx, RegistrationDraft{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if identity.ID == "" || identity.Role != RoleRegistered || identity.KycStatus != KycNotStarted {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	// The new account is reachable by phone and can log in.
	got, ok, err := dir.LookupPhone(ctx, "9876543210")
	if err != nil || !ok || got.ID != identity.ID {
		t.Fatalf("LookupPhone after create: ok=%v err=%v identity=%+v", ok, err, got)
	}
	if _, err := dir.Login(ctx, "asha@example.com", "hunter2hunter2", RoleRegistered); err != nil {
		t.Fatalf("login after create: %v", err)
	}
}
