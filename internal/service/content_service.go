package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/metrics"
)

// ContentRepository persists whole JSON documents by collection name.
type ContentRepository interface {
	Get(ctx context.Context, name string) (*domain.Document, error)
	Put(ctx context.Context, name string, body []byte, expectedRevision *int64) (int64, error)
}

// ContentService reads and replaces the skills and projects collections.
// Every write replaces the whole document.
type ContentService struct {
	repo      ContentRepository
	validator *Validator
	metrics   *metrics.Metrics
}

// NewContentService creates a new ContentService.
func NewContentService(repo ContentRepository, validator *Validator, m *metrics.Metrics) *ContentService {
	return &ContentService{
		repo:      repo,
		validator: validator,
		metrics:   m,
	}
}

// GetSkills returns the skills document and its revision.
// A never-written document is returned empty with revision 0.
func (s *ContentService) GetSkills(ctx context.Context) (*domain.SkillsDocument, int64, error) {
	var doc domain.SkillsDocument
	revision, err := s.load(ctx, domain.CollectionSkills, &doc)
	if err != nil {
		return nil, 0, err
	}
	doc.Normalize()
	return &doc, revision, nil
}

// PutSkills validates and stores doc, returning the new revision.
func (s *ContentService) PutSkills(ctx context.Context, doc *domain.SkillsDocument, expectedRevision *int64) (int64, error) {
	doc.Normalize()
	if err := s.validator.ValidateSkills(doc); err != nil {
		return 0, err
	}
	return s.store(ctx, domain.CollectionSkills, doc, expectedRevision)
}

// GetProjects returns the project list and its revision.
// A never-written list is returned empty with revision 0.
func (s *ContentService) GetProjects(ctx context.Context) ([]domain.Project, int64, error) {
	var projects []domain.Project
	revision, err := s.load(ctx, domain.CollectionProjects, &projects)
	if err != nil {
		return nil, 0, err
	}
	return domain.NormalizeProjects(projects), revision, nil
}

// PutProjects validates and stores projects, returning the new revision.
func (s *ContentService) PutProjects(ctx context.Context, projects []domain.Project, expectedRevision *int64) (int64, error) {
	projects = domain.NormalizeProjects(projects)
	if err := s.validator.ValidateProjects(projects); err != nil {
		return 0, err
	}
	return s.store(ctx, domain.CollectionProjects, projects, expectedRevision)
}

func (s *ContentService) load(ctx context.Context, name string, into any) (int64, error) {
	doc, err := s.repo.Get(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, name, err)
	}

	if err := json.Unmarshal(doc.Body, into); err != nil {
		return 0, fmt.Errorf("%w: decode %s revision %d: %w", domain.ErrStorage, name, doc.Revision, err)
	}
	return doc.Revision, nil
}

func (s *ContentService) store(ctx context.Context, name string, value any, expectedRevision *int64) (int64, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("%w: encode %s: %w", domain.ErrStorage, name, err)
	}

	revision, err := s.repo.Put(ctx, name, body, expectedRevision)
	s.metrics.ObserveContentWrite(name, err)
	if err != nil {
		if errors.Is(err, domain.ErrRevisionConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: write %s: %w", domain.ErrStorage, name, err)
	}

	slog.Info("content document replaced", "collection", name, "revision", revision, "bytes", len(body))
	return revision, nil
}
