package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kdos/folio/internal/domain"
)

// ContentRepository stores whole JSON documents keyed by collection name.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// Get retrieves the document stored under name.
// Returns domain.ErrDocumentNotFound if it was never written.
func (r *ContentRepository) Get(ctx context.Context, name string) (*domain.Document, error) {
	query, args, err := psql.
		Select("name", "document", "revision", "updated_at").
		From("content_documents").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Get query for document %s: %w", name, err)
	}

	var doc domain.Document
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&doc.Name,
		&doc.Body,
		&doc.Revision,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("query document %s: %w", name, err)
	}

	return &doc, nil
}

// Put replaces the document stored under name and returns its new revision.
//
// With expectedRevision nil the write is unconditional. Otherwise it only
// applies when the stored revision equals *expectedRevision (0 meaning the
// document must not exist yet), and domain.ErrRevisionConflict is returned
// when it does not.
func (r *ContentRepository) Put(ctx context.Context, name string, body []byte, expectedRevision *int64) (int64, error) {
	var (
		query string
		args  []interface{}
		err   error
	)

	switch {
	case expectedRevision == nil:
		query, args, err = psql.
			Insert("content_documents").
			Columns("name", "document", "revision", "updated_at").
			Values(name, body, 1, sq.Expr("now()")).
			Suffix("ON CONFLICT (name) DO UPDATE SET " +
				"document = EXCLUDED.document, " +
				"revision = content_documents.revision + 1, " +
				"updated_at = now() " +
				"RETURNING revision").
			ToSql()
	case *expectedRevision == 0:
		query, args, err = psql.
			Insert("content_documents").
			Columns("name", "document", "revision", "updated_at").
			Values(name, body, 1, sq.Expr("now()")).
			Suffix("ON CONFLICT (name) DO NOTHING RETURNING revision").
			ToSql()
	default:
		query, args, err = psql.
			Update("content_documents").
			Set("document", body).
			Set("revision", sq.Expr("revision + 1")).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"name": name, "revision": *expectedRevision}).
			Suffix("RETURNING revision").
			ToSql()
	}
	if err != nil {
		return 0, fmt.Errorf("build Put query for document %s: %w", name, err)
	}

	var revision int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&revision); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRevisionConflict
		}
		return 0, fmt.Errorf("write document %s: %w", name, err)
	}

	return revision, nil
}
