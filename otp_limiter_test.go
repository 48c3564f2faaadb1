package authflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOtpRequestLimiterPhoneCap(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newOtpRequestLimiter(rdb, ThrottleConfig{
		EnablePhoneThrottle: true,
		Window:              15 * time.Minute,
		MaxRequests:         3,
	}, "rbo")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Check(ctx, "9876543210", ""); err != nil {
			t.Fatalf("request %d within cap rejected: %v", i+1, err)
		}
	}
	if err := limiter.Check(ctx, "9876543210", ""); !errors.Is(err, errThrottleLimited) {
		t.Fatalf("expected errThrottleLimited past cap, got %v", err)
	}

	// A different phone has its own window.
	if err := limiter.Check(ctx, "9000000001", ""); err != nil {
		t.Fatalf("unrelated phone rejected: %v", err)
	}
}

func TestOtpRequestLimiterWindowExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newOtpRequestLimiter(rdb, ThrottleConfig{
		EnablePhoneThrottle: true,
		Window:              15 * time.Minute,
		MaxRequests:         1,
	}, "rbo")
	ctx := context.Background()

	if err := limiter.Check(ctx, "9876543210", ""); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}
	if err := limiter.Check(ctx, "9876543210", ""); !errors.Is(err, errThrottleLimited) {
		t.Fatalf("expected errThrottleLimited, got %v", err)
	}

	mr.FastForward(16 * time.Minute)

	if err := limiter.Check(ctx, "9876543210", ""); err != nil {
		t.Fatalf("request after window expiry rejected: %v", err)
	}
}

func TestOtpRequestLimiterIPCap(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newOtpRequestLimiter(rdb, ThrottleConfig{
		EnableIPThrottle: true,
		Window:           15 * time.Minute,
		MaxRequests:      2,
	}, "rbo")
	ctx := context.Background()

	// Distinct phones share the client's IP window.
	if err := limiter.Check(ctx, "9000000001", "203.0.113.9"); err != nil {
		t.Fatal(err)
	}
	if err := limiter.Check(ctx, "9000000002", "203.0.113.9"); err != nil {
		t.Fatal(err)
	}
	if err := limiter.Check(ctx, "9000000003", "203.0.113.9"); !errors.Is(err, errThrottleLimited) {
		t.Fatalf("expected errThrottleLimited on shared IP, got %v", err)
	}

	// No IP on the request means the IP throttle cannot apply.
	if err := limiter.Check(ctx, "9000000004", ""); err != nil {
		t.Fatalf("request without IP rejected: %v", err)
	}
}

func TestOtpRequestLimiterNilPermitsEverything(t *testing.T) {
	var limiter *otpRequestLimiter
	if err := limiter.Check(context.Background(), "9876543210", "203.0.113.9"); err != nil {
		t.Fatalf("nil limiter must permit, got %v", err)
	}

	if got := newOtpRequestLimiter(nil, ThrottleConfig{EnablePhoneThrottle: true}, "rbo"); got != nil {
		t.Fatal("expected nil limiter without a redis client")
	}
	_, rdb := newTestRedis(t)
	if got := newOtpRequestLimiter(rdb, ThrottleConfig{}, "rbo"); got != nil {
		t.Fatal("expected nil limiter when both throttles are disabled")
	}
}
