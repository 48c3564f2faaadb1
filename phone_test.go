package authflow

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want PhoneNumber
	}{
		{"plain digits", "9876543210", "9876543210"},
		{"spaces and dashes", "98-76 54 32-10", "9876543210"},
		{"country prefix", "+919876543210", "919876543210"},
		{"leading zeros stripped", "009876543210", "9876543210"},
		{"zeros only", "0000", ""},
		{"letters discarded", "abc987def6543210", "9876543210"},
		{"empty", "", ""},
		{"parentheses", "(987) 654-3210", "9876543210"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePhone(tc.raw); got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestLimitRawPhone(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		max  int
		want string
	}{
		{"under cap", "98765", 10, "98765"},
		{"at cap", "9876543210", 10, "9876543210"},
		{"over cap truncated", "98765432109999", 10, "9876543210"},
		{"non-digits dropped before cap", "9-8-7-6-5-4-3-2-1-0-9", 10, "9876543210"},
		{"leading zero kept", "0987", 10, "0987"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LimitRawPhone(tc.raw, tc.max); got != tc.want {
				t.Fatalf("LimitRawPhone(%q, %d) = %q, want %q", tc.raw, tc.max, got, tc.want)
			}
		})
	}
}
