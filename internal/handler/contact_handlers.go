package handler

import (
	"net/http"

	"github.com/kdos/folio/internal/handler/dto"
)

// handleContactStatus reports that the contact endpoint is up.
// @Summary Contact endpoint status
// @Tags contact
// @Produce json
// @Success 200 {object} dto.StatusResponse
// @Router /contact [get]
func (h *Handler) handleContactStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.StatusResponse{Status: "Contact API running"})
}

// handleContact relays a contact form submission.
// @Summary Send a contact message
// @Description Validates the message and emails it to the site owner. Without an email provider the message is only logged.
// @Tags contact
// @Accept json
// @Produce json
// @Param request body dto.ContactRequest true "Contact message"
// @Success 200 {object} dto.ContactResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /contact [post]
func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ContactRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	receipt, err := h.contact.Submit(ctx, req.ToContactMessage())
	if err != nil {
		respondDomainError(w, err, "Failed to send message")
		return
	}

	if receipt.Demo {
		respondJSON(w, http.StatusOK, dto.ContactResponse{Message: "Message received (demo mode)", ID: receipt.ID})
		return
	}
	respondJSON(w, http.StatusOK, dto.ContactResponse{Message: "Email sent successfully!"})
}
