// Package repotest provides in-memory repositories for tests of the layers
// above the Postgres repositories.
package repotest

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/kdos/folio/internal/domain"
)

// ContentStore is an in-memory counterpart of repository.ContentRepository.
type ContentStore struct {
	mu   sync.Mutex
	docs map[string]domain.Document

	// Err, when set, is returned by every call.
	Err error
	// Writes counts successful Put calls.
	Writes int
}

// NewContentStore creates an empty ContentStore.
func NewContentStore() *ContentStore {
	return &ContentStore{docs: make(map[string]domain.Document)}
}

// Get returns a copy of the stored document or domain.ErrDocumentNotFound.
func (s *ContentStore) Get(_ context.Context, name string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	doc, ok := s.docs[name]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	doc.Body = bytes.Clone(doc.Body)
	return &doc, nil
}

// Put mirrors the revision semantics of the Postgres repository.
func (s *ContentStore) Put(_ context.Context, name string, body []byte, expectedRevision *int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	current := s.docs[name]
	if expectedRevision != nil && *expectedRevision != current.Revision {
		return 0, domain.ErrRevisionConflict
	}

	s.docs[name] = domain.Document{
		Name:      name,
		Body:      bytes.Clone(body),
		Revision:  current.Revision + 1,
		UpdatedAt: time.Now(),
	}
	s.Writes++
	return current.Revision + 1, nil
}

// Raw returns the stored body for name, or nil.
func (s *ContentStore) Raw(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.docs[name].Body)
}

// SessionStore is an in-memory counterpart of repository.SessionRepository.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	// Err, when set, is returned by every call.
	Err error
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

// Create stores session keyed by its token hash.
func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.sessions[string(session.TokenHash)] = *session
	return nil
}

// GetByTokenHash returns the session or domain.ErrSessionNotFound.
func (s *SessionStore) GetByTokenHash(_ context.Context, tokenHash []byte) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	session, ok := s.sessions[string(tokenHash)]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// DeleteByTokenHash removes the session if present.
func (s *SessionStore) DeleteByTokenHash(_ context.Context, tokenHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	delete(s.sessions, string(tokenHash))
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for key, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
