package authflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureSender records every delivered code and can be told to fail.
type captureSender struct {
	mu    sync.Mutex
	codes []string
	fail  error
}

func (s *captureSender) SendCode(_ context.Context, _ PhoneNumber, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *captureSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

type mapLookup struct {
	identities map[PhoneNumber]Identity
}

func (l *mapLookup) LookupPhone(_ context.Context, phone PhoneNumber) (Identity, bool, error) {
	id, ok := l.identities[phone]
	return id, ok, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Throttle.EnablePhoneThrottle = false
	cfg.Throttle.EnableIPThrottle = false
	return cfg
}

// newSelfHostedEngine builds an engine in self-hosted mode with an injected
// clock, a capturing sender, and the given known identities.
func newSelfHostedEngine(t *testing.T, clock *fakeClock, identities map[PhoneNumber]Identity) (*Engine, *captureSender) {
	t.Helper()

	sender := &captureSender{}
	if identities == nil {
		identities = map[PhoneNumber]Identity{}
	}

	engine, err := New().
		WithConfig(testConfig()).
		WithCodeSender(sender).
		WithIdentityLookup(&mapLookup{identities: identities}).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, sender
}
