package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kdos/folio/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Port:      config.DefaultPort,
		Admin:     config.AdminConfig{Username: "admin", Password: "s3cret"},
		Session:   config.SessionConfig{TTL: config.DefaultSessionTTL, PruneInterval: time.Hour},
		RateLimit: config.RateLimitConfig{PerMinute: config.DefaultLoginRate, Burst: config.DefaultLoginBurst},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *config.Config) {}},
		{name: "hash only", mutate: func(c *config.Config) {
			c.Admin.Password = ""
			c.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuu"
		}},
		{name: "no username", mutate: func(c *config.Config) { c.Admin.Username = "" }, wantErr: "admin username is required"},
		{name: "no password", mutate: func(c *config.Config) { c.Admin.Password = "" }, wantErr: "admin password or password hash is required"},
		{name: "zero ttl", mutate: func(c *config.Config) { c.Session.TTL = 0 }, wantErr: "session ttl must be positive"},
		{name: "zero burst", mutate: func(c *config.Config) { c.RateLimit.Burst = 0 }, wantErr: "login rate and burst must be positive"},
		{name: "resend without recipient", mutate: func(c *config.Config) { c.Contact.ResendAPIKey = "re_123" }, wantErr: "contact recipient is required when a Resend API key is set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
