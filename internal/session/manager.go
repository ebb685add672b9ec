// Package session caches iiko session keys, one slot per server address.
// A key is reused until its TTL runs out and is released with a logout
// when the bot shuts down.
package session

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/api"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
	"github.com/KirillkoTankisto/iiko-bot/internal/infra/metrics"
)

// DefaultTTL is how long a session key is trusted when no TTL is configured.
const DefaultTTL = time.Hour

// Authenticator exchanges credentials for session keys and returns them.
// *api.Client implements it.
type Authenticator interface {
	// Login returns a new session key for server.
	Login(ctx context.Context, server, login, passHash string) (string, error)
	// Logout releases token on server.
	Logout(ctx context.Context, server, token string) error
}

// AuthError wraps a failed credential exchange.
type AuthError struct {
	// Server is the address authentication was attempted on
	Server string
	// Err is the underlying failure
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authenticate on %s: %v", e.Server, e.Err)
}

// Unwrap returns the underlying failure.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Token is a cached session key.
type Token struct {
	// ID is the session key sent as the "key" query parameter
	ID string
	// IssuedAt is when the login request was started
	IssuedAt time.Time
	// TTL is how long the key is reused after IssuedAt
	TTL time.Duration
}

func (t Token) usable(now time.Time) bool {
	return t.ID != "" && now.Sub(t.IssuedAt) < t.TTL
}

// Manager hands out session keys. Concurrent misses for the same server may
// authenticate more than once; the last stored token wins and each stored
// token is one this manager obtained for that server.
type Manager struct {
	// auth performs login and logout
	auth Authenticator
	// ttl is applied to every new token
	ttl time.Duration
	// nowFn is the clock, replaceable in tests
	nowFn   func() time.Time
	logger  *zap.Logger
	metrics *metrics.Recorder

	// mu protects tokens
	mu sync.Mutex
	// tokens maps a server address to its cached key
	tokens map[string]Token
}

// Option configures optional Manager settings.
type Option func(*Manager)

// WithNow replaces the clock used for TTL checks.
func WithNow(nowFn func() time.Time) Option {
	return func(m *Manager) {
		if nowFn != nil {
			m.nowFn = nowFn
		}
	}
}

// WithLogger attaches a logger for session open and close events.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics attaches a recorder that counts authentications.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = rec
	}
}

// NewManager creates a new session manager.
//
// Parameters:
// - auth: performs login and logout against iiko servers
// - ttl: how long a key is reused; DefaultTTL when not positive
// - opts: optional settings
//
// Returns:
// - *Manager: a manager with no cached keys
func NewManager(auth Authenticator, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		auth:   auth,
		ttl:    ttl,
		nowFn:  time.Now,
		logger: zap.NewNop(),
		tokens: make(map[string]Token),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the cached key for the server while it is fresh and
// authenticates otherwise.
//
// Parameters:
// - ctx: bounds the login request
// - creds: login and plain password; the password is hashed before sending
// - server: server address
//
// Returns:
// - string: the session key
// - error: *AuthError when the login fails
func (m *Manager) Acquire(ctx context.Context, creds model.Credentials, server string) (string, error) {
	m.mu.Lock()
	cached, ok := m.tokens[server]
	m.mu.Unlock()
	if ok && cached.usable(m.nowFn()) {
		return cached.ID, nil
	}

	issuedAt := m.nowFn()
	id, err := m.auth.Login(ctx, server, creds.Login, HashPassword(creds.Password))
	m.metrics.Authentication(ctx, server, err == nil)
	if err != nil {
		return "", &AuthError{Server: server, Err: err}
	}

	m.mu.Lock()
	m.tokens[server] = Token{ID: id, IssuedAt: issuedAt, TTL: m.ttl}
	m.mu.Unlock()

	m.logger.Debug("iiko session opened", zap.String("server", server))
	return id, nil
}

// Release logs out a fresh key and clears the slot. Stale keys are dropped
// without contacting the server.
//
// Parameters:
// - ctx: bounds the logout request
// - server: server address
//
// Returns:
// - error: when the logout request fails; the slot is cleared regardless
func (m *Manager) Release(ctx context.Context, server string) error {
	m.mu.Lock()
	cached, ok := m.tokens[server]
	delete(m.tokens, server)
	m.mu.Unlock()

	if !ok || !cached.usable(m.nowFn()) {
		return nil
	}
	if err := m.auth.Logout(ctx, server, cached.ID); err != nil {
		return fmt.Errorf("logout from %s: %w", server, err)
	}
	m.logger.Debug("iiko session closed", zap.String("server", server))
	return nil
}

// Invalidate forgets the key for the server, e.g. after it was rejected.
func (m *Manager) Invalidate(server string) {
	m.mu.Lock()
	delete(m.tokens, server)
	m.mu.Unlock()
}

// ReleaseAll releases every cached key. Logout failures are logged.
func (m *Manager) ReleaseAll(ctx context.Context) {
	m.mu.Lock()
	servers := make([]string, 0, len(m.tokens))
	for server := range m.tokens {
		servers = append(servers, server)
	}
	m.mu.Unlock()

	for _, server := range servers {
		if err := m.Release(ctx, server); err != nil {
			m.logger.Warn("release iiko session", zap.String("server", server), zap.Error(err))
		}
	}
}

// HashPassword is the lowercase hex SHA-1 the auth endpoint expects.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Source hands out session keys. *Manager implements it.
type Source interface {
	// Acquire returns a usable key for server.
	Acquire(ctx context.Context, creds model.Credentials, server string) (string, error)
	// Invalidate drops the cached key for server.
	Invalidate(server string)
}

// WithToken runs fn with a key for server. A key the server rejects is
// dropped and fn is retried once with a fresh one.
//
// Parameters:
// - ctx: passed to src and fn
// - src: key source
// - creds: credentials used when a new key is needed
// - server: server address
// - fn: the request to run with the key
//
// Returns:
// - error: the error of the last fn call, or of Acquire
func WithToken(ctx context.Context, src Source, creds model.Credentials, server string, fn func(ctx context.Context, token string) error) error {
	token, err := src.Acquire(ctx, creds, server)
	if err != nil {
		return err
	}
	err = fn(ctx, token)
	if !api.IsUnauthorized(err) {
		return err
	}

	src.Invalidate(server)
	token, err = src.Acquire(ctx, creds, server)
	if err != nil {
		return err
	}
	return fn(ctx, token)
}
