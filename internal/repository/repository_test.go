package repository_test

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/kdos/folio/internal/database"
	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/repository"
)

type RepositoryTestSuite struct {
	suite.Suite
	pool        *pgxpool.Pool
	contentRepo *repository.ContentRepository
	sessionRepo *repository.SessionRepository
}

func (s *RepositoryTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, databaseURL)
	s.Require().NoError(err)
	s.pool = db.Pool()

	s.contentRepo = repository.NewContentRepository(s.pool)
	s.sessionRepo = repository.NewSessionRepository(s.pool)
}

func (s *RepositoryTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE content_documents, admin_sessions")
	s.Require().NoError(err)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestContent_GetMissing() {
	_, err := s.contentRepo.Get(context.Background(), domain.CollectionSkills)
	s.ErrorIs(err, domain.ErrDocumentNotFound)
}

func (s *RepositoryTestSuite) TestContent_PutThenGet() {
	ctx := context.Background()
	body := []byte(`[{"id":"1","title":"X"}]`)

	rev, err := s.contentRepo.Put(ctx, domain.CollectionProjects, body, nil)
	s.Require().NoError(err)
	s.Equal(int64(1), rev)

	doc, err := s.contentRepo.Get(ctx, domain.CollectionProjects)
	s.Require().NoError(err)
	s.Equal(int64(1), doc.Revision)
	s.JSONEq(string(body), string(doc.Body))
}

func (s *RepositoryTestSuite) TestContent_UnconditionalPutIsLastWriteWins() {
	ctx := context.Background()

	_, err := s.contentRepo.Put(ctx, domain.CollectionSkills, []byte(`{"categories":[{"id":"a"}]}`), nil)
	s.Require().NoError(err)
	rev, err := s.contentRepo.Put(ctx, domain.CollectionSkills, []byte(`{"categories":[{"id":"b"}]}`), nil)
	s.Require().NoError(err)
	s.Equal(int64(2), rev)

	doc, err := s.contentRepo.Get(ctx, domain.CollectionSkills)
	s.Require().NoError(err)
	s.JSONEq(`{"categories":[{"id":"b"}]}`, string(doc.Body))
}

func (s *RepositoryTestSuite) TestContent_ConditionalPut() {
	ctx := context.Background()
	zero, one := int64(0), int64(1)

	rev, err := s.contentRepo.Put(ctx, domain.CollectionProjects, []byte(`[]`), &zero)
	s.Require().NoError(err)
	s.Equal(int64(1), rev)

	// Creating again must fail: the document exists now.
	_, err = s.contentRepo.Put(ctx, domain.CollectionProjects, []byte(`[]`), &zero)
	s.ErrorIs(err, domain.ErrRevisionConflict)

	rev, err = s.contentRepo.Put(ctx, domain.CollectionProjects, []byte(`[{"id":"2"}]`), &one)
	s.Require().NoError(err)
	s.Equal(int64(2), rev)

	// Stale revision.
	_, err = s.contentRepo.Put(ctx, domain.CollectionProjects, []byte(`[{"id":"3"}]`), &one)
	s.ErrorIs(err, domain.ErrRevisionConflict)

	doc, err := s.contentRepo.Get(ctx, domain.CollectionProjects)
	s.Require().NoError(err)
	var got []map[string]string
	s.Require().NoError(json.Unmarshal(doc.Body, &got))
	s.Equal("2", got[0]["id"])
}

func (s *RepositoryTestSuite) TestSession_Lifecycle() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	hash := sha256.Sum256([]byte("token"))

	session := &domain.Session{
		ID:         uuid.NewString(),
		TokenHash:  hash[:],
		Username:   "admin",
		UserAgent:  "test",
		RemoteAddr: "127.0.0.1",
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	s.Require().NoError(s.sessionRepo.Create(ctx, session))

	got, err := s.sessionRepo.GetByTokenHash(ctx, hash[:])
	s.Require().NoError(err)
	s.Equal(session.ID, got.ID)
	s.Equal("admin", got.Username)
	s.True(got.ExpiresAt.Equal(session.ExpiresAt))

	s.Require().NoError(s.sessionRepo.DeleteByTokenHash(ctx, hash[:]))
	_, err = s.sessionRepo.GetByTokenHash(ctx, hash[:])
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *RepositoryTestSuite) TestSession_DeleteExpired() {
	ctx := context.Background()
	now := time.Now().UTC()

	for i, expiresAt := range []time.Time{now.Add(-time.Minute), now.Add(-time.Hour), now.Add(time.Hour)} {
		hash := sha256.Sum256([]byte{byte(i)})
		s.Require().NoError(s.sessionRepo.Create(ctx, &domain.Session{
			ID:        uuid.NewString(),
			TokenHash: hash[:],
			Username:  "admin",
			CreatedAt: now.Add(-2 * time.Hour),
			ExpiresAt: expiresAt,
		}))
	}

	n, err := s.sessionRepo.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}
