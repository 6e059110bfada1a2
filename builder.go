package openleads

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/openleads/openleads/jwt"
	"github.com/openleads/openleads/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config Config

	redis    redis.UniversalClient
	accounts AccountProvider
	mailer   Mailer
	sink     AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing OTP and rate-limit state.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountProvider sets the account lookup/creation collaborator.
func (b *Builder) WithAccountProvider(provider AccountProvider) *Builder {
	b.accounts = provider
	return b
}

// WithMailer sets the OTP delivery collaborator.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink sets the audit event receiver. Optional; without one the
// dispatcher runs with a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration and wires the engine. A Builder can be
// used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.accounts == nil {
		return nil, errors.New("account provider required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:   cfg,
		otp:      newOTPStore(b.redis, cfg.OTP.KeyPrefix),
		accounts: b.accounts,
		mailer:   b.mailer,
		hasher:   hasher,
		tokens:   tokens,
		audit:    newAuditDispatcher(cfg.Audit, b.sink),
	}, nil
}
