package internal

import "testing"

func TestNewOTPFormat(t *testing.T) {
	for _, digits := range []int{6, 8, 10} {
		code, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d): %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("NewOTP(%d): got %d chars", digits, len(code))
		}
		for i := 0; i < len(code); i++ {
			if code[i] < '0' || code[i] > '9' {
				t.Fatalf("NewOTP(%d): non-digit output %q", digits, code)
			}
		}
	}
}

func TestNewOTPRejectsBadLengths(t *testing.T) {
	for _, digits := range []int{-1, 0, 5, 11} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("NewOTP(%d): expected error", digits)
		}
	}
}

func TestNewOTPVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		code, err := NewOTP(6)
		if err != nil {
			t.Fatal(err)
		}
		seen[code] = true
	}
	// Sixteen identical six-digit draws would point at a broken generator.
	if len(seen) < 2 {
		t.Fatalf("expected varied codes, got %v", seen)
	}
}

func TestHashCodeBindsPhone(t *testing.T) {
	a := HashCode("9876543210", "123456")
	b := HashCode("9876543210", "123456")
	if a != b {
		t.Fatal("hash must be deterministic")
	}
	if a == HashCode("9000000001", "123456") {
		t.Fatal("hash must differ across phones")
	}
	if a == HashCode("9876543210", "654321") {
		t.Fatal("hash must differ across codes")
	}
}
