package authflow

import (
	"regexp"
	"strings"
)

// Field names used in validation error maps.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldLocation        = "location"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldCode            = "code"
)

// User-facing validation messages. The hosting UI renders them verbatim.
const (
	msgPhoneLength      = "Phone number must be 10 digits"
	msgCodeFormat       = "Enter a valid 6-digit OTP"
	msgNameRequired     = "Full name is required"
	msgEmailInvalid     = "Invalid email address"
	msgLocationRequired = "Please select country, state, and city"
	msgPasswordLength   = "Password must be at least 8 characters"
	msgPasswordMismatch = "Passwords do not match"
	msgConsentRequired  = "You must accept Terms & Privacy"
	msgResendLimit      = "Resend limit reached"
	msgSendFailed       = "Failed to send OTP. Try again."
	msgVerifyFailed     = "Verification failed. Try again."
)

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// RegistrationDraft is the post-verification signup draft. It is created by
// the flow with the verified phone pre-filled, mutated by user edits, and
// validated atomically on submit. Consent is tracked apart from the field
// set because its failure is a form-level error, not a field error.
type RegistrationDraft struct {
	Name            string
	Email           string
	Phone           PhoneNumber
	Location        LocationSelection
	Password        string
	ConfirmPassword string
	Consent         bool
}

// ValidateDraft runs field-level validation over the draft and returns the
// field → message map, empty when every field passes. It is a pure function:
// no partial results are persisted between keystrokes, and consent is not a
// field concern (see [CheckConsent]).
func ValidateDraft(draft RegistrationDraft, cfg RegistrationConfig) map[string]string {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(draft.Name) == "" {
		fieldErrors[FieldName] = msgNameRequired
	}
	if !emailShape.MatchString(draft.Email) {
		fieldErrors[FieldEmail] = msgEmailInvalid
	}
	if !draft.Location.Complete() {
		fieldErrors[FieldLocation] = msgLocationRequired
	}
	if len(draft.Password) < cfg.MinPasswordLength {
		fieldErrors[FieldPassword] = msgPasswordLength
	}
	if draft.Password != draft.ConfirmPassword {
		fieldErrors[FieldConfirmPassword] = msgPasswordMismatch
	}

	return fieldErrors
}

// CheckConsent blocks submission with the form-level consent error when the
// terms checkbox is unchecked. Run after field validation passes.
func CheckConsent(draft RegistrationDraft) error {
	if !draft.Consent {
		return ErrConsentRequired
	}
	return nil
}

// ComposedLocation returns the draft location as "city, state, country".
func (d RegistrationDraft) ComposedLocation() (string, error) {
	if !d.Location.Complete() {
		return "", ErrLocationIncomplete
	}
	return d.Location.City + ", " + d.Location.State + ", " + d.Location.Country, nil
}
