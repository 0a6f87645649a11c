package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/kdos/folio/internal/config"
	"github.com/kdos/folio/internal/domain"
	"github.com/kdos/folio/internal/handler/dto"
	"github.com/kdos/folio/internal/middleware"
	"github.com/kdos/folio/internal/service"
)

// handleLogin authenticates the administrator and sets the session cookie.
// @Summary Admin login
// @Description Verifies the admin credentials and issues an http-only session cookie valid for 24h.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Admin credentials"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.LoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	_, token, err := h.guard.Login(ctx, req.Username, req.Password, service.ClientInfo{
		UserAgent:  r.UserAgent(),
		RemoteAddr: middleware.ClientIP(r, h.trustProxy),
	})
	if err != nil {
		respondDomainError(w, err, "Login failed")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, dto.NewSuccessResponse("Login successful"))
}

// handleLogout revokes the current session and clears the cookie.
// @Summary Admin logout
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The cookie goes away even if the store is unreachable.
	h.clearSessionCookie(w)

	if err := h.guard.Logout(ctx, middleware.SessionToken(r)); err != nil {
		respondDomainError(w, err, "Logout failed")
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSuccessResponse("Logged out successfully"))
}

// handleCheck reports whether the request carries a live admin session.
// @Summary Check admin session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthStatusResponse
// @Failure 401 {object} dto.AuthStatusResponse
// @Router /auth/check [get]
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := h.guard.Check(ctx, middleware.SessionToken(r))
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, dto.AuthStatusResponse{Authenticated: true})
	case errors.Is(err, domain.ErrUnauthenticated):
		respondJSON(w, http.StatusUnauthorized, dto.AuthStatusResponse{Authenticated: false})
	default:
		respondDomainError(w, err, "Session check failed")
	}
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
