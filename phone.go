package authflow

import "strings"

// PhoneNumber is the canonical phone representation: digits only, leading
// zeros stripped. A canonical number of the configured length is the
// identity key for an OTP session. The display prefix ("+91") is never
// part of the canonical value.
type PhoneNumber string

// String describes the string operation and its observable behavior.
func (p PhoneNumber) String() string {
	return string(p)
}

// NormalizePhone reduces raw input to the canonical digit string: every
// non-digit character is removed, then leading zeros are stripped. The
// function is total — malformed input yields a shorter (possibly empty)
// result, never an error. Length validation is the caller's concern.
func NormalizePhone(raw string) PhoneNumber {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	return PhoneNumber(digits)
}

// LimitRawPhone mirrors the entry-field behavior of the hosting UI: keep
// digits as typed, capped at max characters. It does not strip leading
// zeros — that happens at normalization time.
func LimitRawPhone(raw string, max int) string {
	var b strings.Builder
	for i := 0; i < len(raw) && b.Len() < max; i++ {
		c := raw[i]
		if c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (e *Engine) validPhone(p PhoneNumber) bool {
	return len(p) == e.config.Phone.Length
}
