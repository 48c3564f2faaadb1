package authflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Saroj-Kumarr/ribitto-authflow/internal"
	"github.com/redis/go-redis/v9"
)

// RedisOtpBackend is the bundled authoritative verification backend. It
// generates codes server-side, persists only their hashes in Redis, and
// delivers the plaintext through a [CodeSender]. Codes are one-shot and
// attempt-capped; a repeat request for the same phone overwrites the prior
// challenge, so the old code stops verifying the moment a new one is sent.
type RedisOtpBackend struct {
	config     OTPConfig
	store      *otpChallengeStore
	sender     CodeSender
	identities IdentityLookup
}

// NewRedisOtpBackend describes the newredisotpbackend operation and its observable behavior.
//
// NewRedisOtpBackend may return an error when input validation, dependency calls, or security checks fail.
func NewRedisOtpBackend(redisClient *redis.Client, cfg OTPConfig, sender CodeSender, identities IdentityLookup) (*RedisOtpBackend, error) {
	if redisClient == nil {
		return nil, errors.New("redis client required")
	}
	if sender == nil {
		return nil, errors.New("code sender required")
	}
	if identities == nil {
		return nil, errors.New("identity lookup required")
	}
	if cfg.Digits < 6 || cfg.Digits > 10 {
		return nil, errors.New("otp digits must be in range 6..10")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("otp ttl must be positive")
	}

	prefix := cfg.RedisPrefix
	if prefix == "" {
		prefix = "rbo"
	}

	return &RedisOtpBackend{
		config:     cfg,
		store:      newOtpChallengeStore(redisClient, prefix),
		sender:     sender,
		identities: identities,
	}, nil
}

// RequestOtp generates a fresh challenge for the phone and delivers the
// code. The stored record is removed again when delivery fails, so an
// undeliverable code can never be verified.
func (b *RedisOtpBackend) RequestOtp(ctx context.Context, phone PhoneNumber) error {
	code, err := internal.NewOTP(b.config.Digits)
	if err != nil {
		return err
	}

	record := &otpChallengeRecord{
		CodeHash:  internal.HashCode(string(phone), code),
		ExpiresAt: time.Now().Add(b.config.TTL).Unix(),
	}
	if err := b.store.Save(ctx, phone, record, b.config.TTL); err != nil {
		return err
	}

	if err := b.sender.SendCode(ctx, phone, code); err != nil {
		if delErr := b.store.Delete(ctx, phone); delErr != nil {
			log.Print("authflow: failed to remove challenge after send failure: ", delErr)
		}
		return err
	}

	return nil
}

// VerifyOtp consumes the stored challenge. A correct code deletes the
// challenge and resolves the phone against the identity lookup; a wrong
// code burns one attempt. An expired, already-consumed, or attempt-capped
// challenge reports [ErrOtpExpired] — from the caller's side the code no
// longer exists.
func (b *RedisOtpBackend) VerifyOtp(ctx context.Context, phone PhoneNumber, code string) (VerifyResult, error) {
	providedHash := internal.HashCode(string(phone), code)

	err := b.store.Consume(ctx, phone, providedHash, b.config.MaxVerifyAttempts)
	switch {
	case err == nil:
	case errors.Is(err, errChallengeCodeMismatch):
		return VerifyResult{}, ErrOtpMismatch
	case errors.Is(err, errChallengeNotFound), errors.Is(err, errChallengeAttemptsExceeded):
		return VerifyResult{}, ErrOtpExpired
	default:
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	identity, exists, err := b.identities.LookupPhone(ctx, phone)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return VerifyResult{Exists: exists, Identity: identity}, nil
}
