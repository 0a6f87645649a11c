package config

import (
	"errors"
	"time"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// SessionCookieName is the cookie carrying the admin session token.
	SessionCookieName = "admin_token"

	// DefaultSessionTTL is the lifetime of an admin session and its cookie.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultLoginRate is the number of login attempts allowed per client per minute.
	DefaultLoginRate = 5

	// DefaultLoginBurst is the number of login attempts a client may make back to back.
	DefaultLoginBurst = 5

	// DefaultPruneInterval is how often serve deletes expired sessions.
	DefaultPruneInterval = time.Hour

	// DefaultContactFrom is the sender address Resend accepts without a verified domain.
	DefaultContactFrom = "Portfolio Contact <onboarding@resend.dev>"

	// MaxBodyBytes caps request bodies accepted by the API.
	MaxBodyBytes = 1 << 20
)

// Config holds the runtime configuration of the serve command.
type Config struct {
	Port      string
	Admin     AdminConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Contact   ContactConfig
}

// AdminConfig holds the single administrator credential.
// PasswordHash, when set, takes precedence over Password.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// SessionConfig controls session lifetime and the cookie policy.
type SessionConfig struct {
	TTL           time.Duration
	SecureCookies bool
	PruneInterval time.Duration
}

// RateLimitConfig controls login throttling per client address.
type RateLimitConfig struct {
	PerMinute  int
	Burst      int
	TrustProxy bool
}

// ContactConfig controls delivery of contact form messages.
type ContactConfig struct {
	ResendAPIKey string
	From         string
	To           []string
}

// Validate reports configuration that would leave the admin area unusable or open.
func (c Config) Validate() error {
	if c.Admin.Username == "" {
		return errors.New("admin username is required")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return errors.New("admin password or password hash is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("login rate and burst must be positive")
	}
	if c.Contact.ResendAPIKey != "" && len(c.Contact.To) == 0 {
		return errors.New("contact recipient is required when a Resend API key is set")
	}
	return nil
}
