package authflow

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authflow APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	backend      OtpBackend
	codeSender   CodeSender
	identities   IdentityLookup
	loginBackend LoginBackend
	accounts     AccountCreator
	locations    LocationProvider
	hooks        Hooks
	auditSink    AuditSink
	clock        func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithOtpBackend wires a remote authoritative verification backend. When
// set, the engine never generates or compares codes itself.
func (b *Builder) WithOtpBackend(backend OtpBackend) *Builder {
	b.backend = backend
	return b
}

// WithCodeSender wires code delivery for the self-hosted mode, where the
// engine generates codes and compares them locally.
func (b *Builder) WithCodeSender(sender CodeSender) *Builder {
	b.codeSender = sender
	return b
}

// WithIdentityLookup describes the withidentitylookup operation and its observable behavior.
func (b *Builder) WithIdentityLookup(lookup IdentityLookup) *Builder {
	b.identities = lookup
	return b
}

// WithLoginBackend describes the withloginbackend operation and its observable behavior.
func (b *Builder) WithLoginBackend(backend LoginBackend) *Builder {
	b.loginBackend = backend
	return b
}

// WithAccountCreator describes the withaccountcreator operation and its observable behavior.
func (b *Builder) WithAccountCreator(creator AccountCreator) *Builder {
	b.accounts = creator
	return b
}

// WithLocations describes the withlocations operation and its observable behavior.
func (b *Builder) WithLocations(provider LocationProvider) *Builder {
	b.locations = provider
	return b
}

// WithHooks describes the withhooks operation and its observable behavior.
func (b *Builder) WithHooks(hooks Hooks) *Builder {
	b.hooks = hooks
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the engine's time source. Tests use it to exercise
// expiry boundaries without sleeping.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	// Exactly one verification mode must be viable. There is no insecure
	// fallback that compares against a locally invented code.
	if b.backend == nil {
		if b.codeSender == nil {
			return nil, errors.New("otp backend or code sender required")
		}
		if b.identities == nil {
			return nil, errors.New("identity lookup required in self-hosted mode")
		}
	}

	if (cfg.Throttle.EnablePhoneThrottle || cfg.Throttle.EnableIPThrottle) && b.redis == nil {
		return nil, errors.New("request throttling requires redis client")
	}

	engine := &Engine{
		config:       cfg,
		backend:      b.backend,
		codeSender:   b.codeSender,
		identities:   b.identities,
		loginBackend: b.loginBackend,
		accounts:     b.accounts,
		locations:    b.locations,
		hooks:        b.hooks,
		now:          b.clock,
	}
	if engine.now == nil {
		engine.now = time.Now
	}

	engine.requestLimiter = newOtpRequestLimiter(b.redis, cfg.Throttle, cfg.OTP.RedisPrefix)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
