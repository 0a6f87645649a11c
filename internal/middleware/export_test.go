package middleware

import "time"

// SetClock replaces the limiter's time source.
func (l *RateLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Buckets returns the number of tracked clients.
func (l *RateLimiter) Buckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
