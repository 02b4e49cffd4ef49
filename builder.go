package goTokens

import (
	"encoding/base64"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goTokens/password"
	"github.com/MrEthical07/goTokens/session"
	"github.com/MrEthical07/goTokens/token"
)

// Builder wires an [Engine]. Construction is allocation-only until Build,
// which validates configuration and collaborators and fails fast on anything
// missing.
type Builder struct {
	config    Config
	liveness  session.Liveness
	sessions  session.Store
	users     UserLookup
	passwords PasswordComparer
	logger    *zap.Logger
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// WithConfig sets the engine configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis wires the liveness index to a Redis client. Shorthand for
// WithLiveness(session.NewRedisLiveness(client)).
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.liveness = session.NewRedisLiveness(client)
	return b
}

// WithLiveness wires a custom liveness index.
func (b *Builder) WithLiveness(liveness session.Liveness) *Builder {
	b.liveness = liveness
	return b
}

// WithSessionStore wires the persistent session store.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessions = store
	return b
}

// WithUserLookup wires the host application's credential lookup.
func (b *Builder) WithUserLookup(users UserLookup) *Builder {
	b.users = users
	return b
}

// WithPasswordComparer overrides the bcrypt default.
func (b *Builder) WithPasswordComparer(cmp PasswordComparer) *Builder {
	b.passwords = cmp
	return b
}

// WithLogger sets the logger; a nop logger is used when omitted.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.users == nil {
		return nil, fmt.Errorf("%w: user lookup is required", ErrEngineNotReady)
	}
	if b.sessions == nil {
		return nil, fmt.Errorf("%w: session store is required", ErrEngineNotReady)
	}
	if b.liveness == nil {
		return nil, fmt.Errorf("%w: liveness index is required", ErrEngineNotReady)
	}

	secret, err := base64.StdEncoding.DecodeString(b.config.SecretBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: signing secret is not valid base64: %v", ErrEngineNotReady, err)
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	passwords := b.passwords
	if passwords == nil {
		passwords = password.NewBcrypt(0)
	}

	codec, err := token.NewCodec(secret, b.config.SigningMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
	}
	issuer, err := token.NewIssuer(codec, b.config.AccessTokenTTL, b.config.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
	}
	verifier, err := token.NewVerifier(codec, b.liveness, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
	}

	return &Engine{
		config:    b.config,
		logger:    logger,
		metrics:   NewMetrics(b.config.Metrics),
		users:     b.users,
		passwords: passwords,
		sessions:  b.sessions,
		liveness:  b.liveness,
		issuer:    issuer,
		verifier:  verifier,
	}, nil
}
