package authflow

import (
	"errors"
	"testing"
)

func validDraft() RegistrationDraft {
	return RegistrationDraft{
		Name:            "Asha Rao",
		Email:           "asha@example.com",
		Phone:           "9876543210",
		Location:        LocationSelection{Country: "IN", State: "MH", City: "Mumbai"},
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
		Consent:         true,
	}
}

func TestValidateDraftAllPass(t *testing.T) {
	fieldErrors := ValidateDraft(validDraft(), DefaultConfig().Registration)
	if len(fieldErrors) != 0 {
		t.Fatalf("expected no field errors, got %v", fieldErrors)
	}
}

func TestValidateDraftFieldFailures(t *testing.T) {
	cfg := DefaultConfig().Registration

	cases := []struct {
		name    string
		mutate  func(*RegistrationDraft)
		field   string
		message string
	}{
		{"empty name", func(d *RegistrationDraft) { d.Name = "   " }, FieldName, msgNameRequired},
		{"bad email", func(d *RegistrationDraft) { d.Email = "not-an-email" }, FieldEmail, msgEmailInvalid},
		{"email missing tld", func(d *RegistrationDraft) { d.Email = "a@b" }, FieldEmail, msgEmailInvalid},
		{"incomplete location", func(d *RegistrationDraft) { d.Location.City = "" }, FieldLocation, msgLocationRequired},
		{"short password", func(d *RegistrationDraft) { d.Password, d.ConfirmPassword = "short", "short" }, FieldPassword, msgPasswordLength},
		{"password mismatch", func(d *RegistrationDraft) { d.ConfirmPassword = "different-pass" }, FieldConfirmPassword, msgPasswordMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(&draft)
			fieldErrors := ValidateDraft(draft, cfg)
			if got := fieldErrors[tc.field]; got != tc.message {
				t.Fatalf("expected %q on field %q, got %q (all: %v)", tc.message, tc.field, got, fieldErrors)
			}
		})
	}
}

func TestValidateDraftCollectsAllFailures(t *testing.T) {
	draft := RegistrationDraft{}
	fieldErrors := ValidateDraft(draft, DefaultConfig().Registration)

	for _, field := range []string{FieldName, FieldEmail, FieldLocation, FieldPassword} {
		if _, ok := fieldErrors[field]; !ok {
			t.Fatalf("expected failure on %q, got %v", field, fieldErrors)
		}
	}
}

func TestValidateDraftIgnoresConsent(t *testing.T) {
	draft := validDraft()
	draft.Consent = false
	fieldErrors := ValidateDraft(draft, DefaultConfig().Registration)
	if len(fieldErrors) != 0 {
		t.Fatalf("consent must not be a field error, got %v", fieldErrors)
	}
}

func TestCheckConsent(t *testing.T) {
	draft := validDraft()
	if err := CheckConsent(draft); err != nil {
		t.Fatalf("expected consent to pass, got %v", err)
	}

	draft.Consent = false
	if err := CheckConsent(draft); !errors.Is(err, ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired, got %v", err)
	}
}

func TestDraftComposedLocation(t *testing.T) {
	draft := validDraft()
	got, err := draft.ComposedLocation()
	if err != nil {
		t.Fatalf("ComposedLocation: %v", err)
	}
	if got != "Mumbai, MH, IN" {
		t.Fatalf("expected %q, got %q", "Mumbai, MH, IN", got)
	}

	draft.Location.State = ""
	if _, err := draft.ComposedLocation(); !errors.Is(err, ErrLocationIncomplete) {
		t.Fatalf("expected ErrLocationIncomplete, got %v", err)
	}
}
