package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kdos/folio/internal/domain"
)

var sessionColumns = []string{
	"id", "token_hash", "username", "user_agent", "remote_addr", "created_at", "expires_at",
}

// SessionRepository handles database operations for admin sessions.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a newly issued session.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query, args, err := psql.
		Insert("admin_sessions").
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.TokenHash,
			session.Username,
			session.UserAgent,
			session.RemoteAddr,
			session.CreatedAt,
			session.ExpiresAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByTokenHash finds a session by the hash of its token.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash []byte) (*domain.Session, error) {
	query, args, err := psql.
		Select(sessionColumns...).
		From("admin_sessions").
		Where(sq.Eq{"token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByTokenHash query: %w", err)
	}

	var session domain.Session
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&session.ID,
		&session.TokenHash,
		&session.Username,
		&session.UserAgent,
		&session.RemoteAddr,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	return &session, nil
}

// DeleteByTokenHash removes the session with the given token hash, if any.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash []byte) error {
	query, args, err := psql.
		Delete("admin_sessions").
		Where(sq.Eq{"token_hash": tokenHash}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build DeleteByTokenHash query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql.
		Delete("admin_sessions").
		Where(sq.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build DeleteExpired query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
