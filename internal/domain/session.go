package domain

import "time"

// Session is an issued admin session. Only the hash of its token is kept.
type Session struct {
	ID         string
	TokenHash  []byte
	Username   string
	UserAgent  string
	RemoteAddr string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
