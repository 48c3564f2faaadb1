package authflow

import (
	"errors"
	"time"
)

// Config defines a public type used by authflow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	OTP          OTPConfig
	Phone        PhoneConfig
	Code         CodeConfig
	Registration RegistrationConfig
	Throttle     ThrottleConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by authflow APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	TTL       time.Duration // session lifetime from issuance
	MaxResend int           // resends allowed after the initial issue
	Digits    int           // code length, 6..10
	// MaxVerifyAttempts caps failed code submissions against one stored
	// challenge in the bundled Redis backend. 0 disables the cap.
	MaxVerifyAttempts int
	RedisPrefix       string
}

/*
====================================
PHONE CONFIG
====================================
*/

// PhoneConfig defines a public type used by authflow APIs.
//
// PhoneConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PhoneConfig struct {
	// Length is the canonical digit count after normalization.
	Length int
	// DisplayPrefix is the country-code prefix shown by the hosting UI.
	// It is a display concern only and never part of the canonical phone.
	DisplayPrefix string
}

/*
====================================
CODE INPUT CONFIG
====================================
*/

// CodeConfig defines a public type used by authflow APIs.
//
// CodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodeConfig struct {
	Slots int // segmented input slot count, normally equal to OTP.Digits
}

/*
====================================
REGISTRATION CONFIG
====================================
*/

// RegistrationConfig defines a public type used by authflow APIs.
//
// RegistrationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegistrationConfig struct {
	MinPasswordLength int
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig defines a public type used by authflow APIs.
//
// ThrottleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ThrottleConfig struct {
	// EnablePhoneThrottle applies a fixed-window cap on issue/resend
	// requests per canonical phone. Requires Redis.
	EnablePhoneThrottle bool
	// EnableIPThrottle applies the same cap per client IP when the hosting
	// shell attaches one via [WithClientIP].
	EnableIPThrottle bool
	Window           time.Duration
	MaxRequests      int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authflow APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authflow APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			TTL:               5 * time.Minute,
			MaxResend:         3,
			Digits:            6,
			MaxVerifyAttempts: 5,
			RedisPrefix:       "rbo",
		},
		Phone: PhoneConfig{
			Length:        10,
			DisplayPrefix: "+91",
		},
		Code: CodeConfig{
			Slots: 6,
		},
		Registration: RegistrationConfig{
			MinPasswordLength: 8,
		},
		Throttle: ThrottleConfig{
			EnablePhoneThrottle: true,
			EnableIPThrottle:    false,
			Window:              15 * time.Minute,
			MaxRequests:         8,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the engine defaults: 5-minute sessions, three
// resends, six-digit codes, 10-digit canonical phones.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// All sections are value types today; the clone exists so that builder
	// callers can reuse their Config without aliasing engine state.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.OTP.TTL <= 0 {
		return errors.New("otp ttl must be positive")
	}
	if cfg.OTP.MaxResend < 0 {
		return errors.New("otp max resend must not be negative")
	}
	if cfg.OTP.Digits < 6 || cfg.OTP.Digits > 10 {
		return errors.New("otp digits must be in range 6..10")
	}
	if cfg.OTP.MaxVerifyAttempts < 0 {
		return errors.New("otp max verify attempts must not be negative")
	}
	if cfg.Phone.Length <= 0 {
		return errors.New("phone length must be positive")
	}
	if cfg.Code.Slots != cfg.OTP.Digits {
		return errors.New("code slots must match otp digits")
	}
	if cfg.Registration.MinPasswordLength < 1 {
		return errors.New("minimum password length must be positive")
	}
	if cfg.Throttle.EnablePhoneThrottle || cfg.Throttle.EnableIPThrottle {
		if cfg.Throttle.Window <= 0 {
			return errors.New("throttle window must be positive")
		}
		if cfg.Throttle.MaxRequests < 1 {
			return errors.New("throttle max requests must be positive")
		}
	}
	return nil
}
