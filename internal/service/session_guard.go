package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kdos/folio/internal/config"
	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/metrics"
)

const tokenBytes = 32

// SessionRepository stores issued admin sessions by token hash.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash []byte) (*domain.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash []byte) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ClientInfo identifies the client of a login, for the session record and logs.
type ClientInfo struct {
	UserAgent  string
	RemoteAddr string
}

// SessionGuard authenticates the single administrator and validates the
// session tokens it issues against the session store.
type SessionGuard struct {
	repo    SessionRepository
	admin   config.AdminConfig
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
	random  io.Reader
}

// GuardOption customises a SessionGuard.
type GuardOption func(*SessionGuard)

// WithClock replaces the time source.
func WithClock(now func() time.Time) GuardOption {
	return func(g *SessionGuard) { g.now = now }
}

// WithRandom replaces the token entropy source.
func WithRandom(r io.Reader) GuardOption {
	return func(g *SessionGuard) { g.random = r }
}

// NewSessionGuard creates a new SessionGuard.
func NewSessionGuard(repo SessionRepository, admin config.AdminConfig, ttl time.Duration, m *metrics.Metrics, opts ...GuardOption) *SessionGuard {
	g := &SessionGuard{
		repo:    repo,
		admin:   admin,
		ttl:     ttl,
		metrics: m,
		now:     time.Now,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TTL returns the lifetime of issued sessions.
func (g *SessionGuard) TTL() time.Duration {
	return g.ttl
}

// Login verifies the credentials and issues a session.
// The returned token is the only copy of the secret; the store keeps its hash.
func (g *SessionGuard) Login(ctx context.Context, username, password string, client ClientInfo) (*domain.Session, string, error) {
	if username == "" || password == "" {
		return nil, "", domain.ErrCredentialsRequired
	}

	if !g.verify(username, password) {
		g.metrics.ObserveLogin(metrics.LoginFailure)
		slog.Warn("admin login failed",
			"username", username,
			"remote_addr", client.RemoteAddr,
			"user_agent", client.UserAgent,
		)
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := g.newToken()
	if err != nil {
		return nil, "", err
	}

	now := g.now().UTC()
	session := &domain.Session{
		ID:         uuid.NewString(),
		TokenHash:  hashToken(token),
		Username:   g.admin.Username,
		UserAgent:  client.UserAgent,
		RemoteAddr: client.RemoteAddr,
		CreatedAt:  now,
		ExpiresAt:  now.Add(g.ttl),
	}
	if err := g.repo.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("%w: create session: %w", domain.ErrStorage, err)
	}

	g.metrics.ObserveLogin(metrics.LoginSuccess)
	slog.Info("admin logged in", "session_id", session.ID, "remote_addr", client.RemoteAddr)

	return session, token, nil
}

// Check returns the live session for token, or domain.ErrUnauthenticated.
func (g *SessionGuard) Check(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	hash := hashToken(token)
	session, err := g.repo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: load session: %w", domain.ErrStorage, err)
	}

	if session.IsExpired(g.now()) {
		if err := g.repo.DeleteByTokenHash(ctx, hash); err != nil {
			slog.Error("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, domain.ErrUnauthenticated
	}

	return session, nil
}

// Logout revokes the session for token. Unknown or empty tokens are ignored.
func (g *SessionGuard) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := g.repo.DeleteByTokenHash(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("%w: delete session: %w", domain.ErrStorage, err)
	}
	return nil
}

// PruneExpired deletes expired sessions and returns how many were removed.
func (g *SessionGuard) PruneExpired(ctx context.Context) (int64, error) {
	n, err := g.repo.DeleteExpired(ctx, g.now())
	if err != nil {
		return 0, fmt.Errorf("%w: prune sessions: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// verify compares both values without short-circuiting on the username.
func (g *SessionGuard) verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.admin.Username)) == 1

	var passOK bool
	if g.admin.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(g.admin.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(g.admin.Password)) == 1
	}

	return userOK && passOK
}

func (g *SessionGuard) newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

// HashPassword returns the bcrypt hash to configure as the admin password hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
