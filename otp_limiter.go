package authflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	errThrottleLimited     = errors.New("otp request throttle exhausted")
	errThrottleUnavailable = errors.New("otp request limiter unavailable")
)

type otpRequestLimiter struct {
	redis  *redis.Client
	config ThrottleConfig
	prefix string
}

func newOtpRequestLimiter(redisClient *redis.Client, cfg ThrottleConfig, prefix string) *otpRequestLimiter {
	if redisClient == nil || (!cfg.EnablePhoneThrottle && !cfg.EnableIPThrottle) {
		return nil
	}
	return &otpRequestLimiter{
		redis:  redisClient,
		config: cfg,
		prefix: prefix,
	}
}

// Check enforces the fixed-window request caps. A nil limiter permits
// everything.
func (l *otpRequestLimiter) Check(ctx context.Context, phone PhoneNumber, ip string) error {
	if l == nil {
		return nil
	}
	if l.config.EnablePhoneThrottle {
		if err := l.enforceFixedWindow(ctx, throttlePhoneKey(l.prefix, phone)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceFixedWindow(ctx, throttleIPKey(l.prefix, ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *otpRequestLimiter) enforceFixedWindow(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errThrottleUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errThrottleUnavailable, err)
		}
	}

	if count > int64(l.config.MaxRequests) {
		return errThrottleLimited
	}

	return nil
}

func throttlePhoneKey(prefix string, phone PhoneNumber) string {
	return prefix + ":thr:p:" + string(phone)
}

func throttleIPKey(prefix, ip string) string {
	return prefix + ":thr:ip:" + ip
}
