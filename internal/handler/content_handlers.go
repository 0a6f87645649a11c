package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/handler/dto"
)

// handleGetSkills returns the skills document.
// @Summary Get skills
// @Description Returns the skill categories. A never-written document is returned empty.
// @Tags content
// @Produce json
// @Success 200 {object} domain.SkillsDocument
// @Header 200 {string} ETag "Document revision"
// @Failure 500 {object} dto.ErrorResponse
// @Router /skills [get]
func (h *Handler) handleGetSkills(w http.ResponseWriter, r *http.Request) {
	doc, revision, err := h.content.GetSkills(r.Context())
	if err != nil {
		respondDomainError(w, err, "Failed to read skills data")
		return
	}

	respondDocument(w, r, revision, doc)
}

// handlePutSkills replaces the skills document.
// @Summary Replace skills
// @Description Replaces the whole skills document. Send If-Match with the ETag from GET to reject concurrent edits.
// @Tags content
// @Accept json
// @Produce json
// @Param request body domain.SkillsDocument true "Skills document"
// @Param If-Match header string false "Expected revision ETag"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /skills [post]
func (h *Handler) handlePutSkills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expected, err := expectedRevision(r)
	if err != nil {
		respondDomainError(w, err, "")
		return
	}

	var doc domain.SkillsDocument
	if !decodeJSON(w, r, &doc, true) {
		return
	}
	if doc.Categories == nil {
		respondError(w, http.StatusBadRequest, "categories is required")
		return
	}

	revision, err := h.content.PutSkills(ctx, &doc, expected)
	if err != nil {
		respondDomainError(w, err, "Failed to update skills data")
		return
	}

	w.Header().Set("ETag", etag(revision))
	respondJSON(w, http.StatusOK, dto.NewSuccessResponse("Skills updated successfully"))
}

// handleGetProjects returns the project list.
// @Summary Get projects
// @Description Returns the projects in display order. A never-written list is returned empty.
// @Tags content
// @Produce json
// @Success 200 {array} domain.Project
// @Header 200 {string} ETag "Document revision"
// @Failure 500 {object} dto.ErrorResponse
// @Router /projects [get]
func (h *Handler) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	projects, revision, err := h.content.GetProjects(r.Context())
	if err != nil {
		respondDomainError(w, err, "Failed to read projects data")
		return
	}

	respondDocument(w, r, revision, projects)
}

// handlePutProjects replaces the project list.
// @Summary Replace projects
// @Description Replaces the whole project list. Send If-Match with the ETag from GET to reject concurrent edits.
// @Tags content
// @Accept json
// @Produce json
// @Param request body []domain.Project true "Project list"
// @Param If-Match header string false "Expected revision ETag"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /projects [post]
func (h *Handler) handlePutProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expected, err := expectedRevision(r)
	if err != nil {
		respondDomainError(w, err, "")
		return
	}

	var projects []domain.Project
	if !decodeJSON(w, r, &projects, true) {
		return
	}
	if projects == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	revision, err := h.content.PutProjects(ctx, projects, expected)
	if err != nil {
		respondDomainError(w, err, "Failed to update projects data")
		return
	}

	w.Header().Set("ETag", etag(revision))
	respondJSON(w, http.StatusOK, dto.NewSuccessResponse("Projects updated successfully"))
}

// respondDocument writes a stored document with its ETag, or 304 when the
// client already holds that revision.
func respondDocument(w http.ResponseWriter, r *http.Request, revision int64, body interface{}) {
	w.Header().Set("ETag", etag(revision))
	w.Header().Set("Cache-Control", "no-cache")

	if etagMatches(r.Header.Values("If-None-Match"), revision) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	respondJSON(w, http.StatusOK, body)
}

func etag(revision int64) string {
	return `"` + strconv.FormatInt(revision, 10) + `"`
}

// etagMatches reports whether any entity tag in the If-None-Match values
// names revision. Weak tags compare by their opaque value.
func etagMatches(values []string, revision int64) bool {
	for _, value := range values {
		for _, candidate := range strings.Split(value, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == "*" {
				return true
			}
			candidate = strings.Trim(strings.TrimPrefix(candidate, "W/"), `"`)
			if n, err := strconv.ParseInt(candidate, 10, 64); err == nil && n == revision {
				return true
			}
		}
	}
	return false
}

// expectedRevision parses If-Match. A missing header or "*" means the write
// is unconditional.
func expectedRevision(r *http.Request) (*int64, error) {
	value := strings.TrimSpace(r.Header.Get("If-Match"))
	if value == "" || value == "*" {
		return nil, nil
	}

	value = strings.Trim(strings.TrimPrefix(value, "W/"), `"`)
	revision, err := strconv.ParseInt(value, 10, 64)
	if err != nil || revision < 0 {
		return nil, fmt.Errorf("%w: If-Match must be an ETag returned by GET", domain.ErrValidation)
	}
	return &revision, nil
}
