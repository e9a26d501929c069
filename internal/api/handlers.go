/**
 * @description
 * This file contains the HTTP handler functions for the entitlement service.
 * Handlers parse incoming requests, call the service layer, and map service
 * errors onto the single { "error": message } response shape. No internal
 * error detail crosses this boundary.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/app"
	"github.com/Slumerican4Life/linguista-genesis-sub001/internal/domain"
	"github.com/Slumerican4Life/linguista-genesis-sub001/pkg/stripeclient"
)

// Handler holds the application services that handlers interact with.
type Handler struct {
	billing      app.BillingService
	verification app.VerificationService
	siteURL      string
}

// NewHandler creates a new Handler with the given services. siteURL is the
// fallback return destination when a request carries no Origin header.
func NewHandler(billing app.BillingService, verification app.VerificationService, siteURL string) *Handler {
	return &Handler{billing: billing, verification: verification, siteURL: siteURL}
}

// origin resolves the caller's originating origin for checkout/portal return
// URLs.
func (h *Handler) origin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	return h.siteURL
}

// handleStartCheckout handles POST /billing/checkout.
func (h *Handler) handleStartCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		PriceID string `json:"priceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url, err := h.billing.StartCheckout(r.Context(), principal.UserID, principal.Email, req.PriceID, h.origin(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleOpenPortal handles POST /billing/portal.
func (h *Handler) handleOpenPortal(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	url, err := h.billing.OpenManagementPortal(r.Context(), principal.UserID, h.origin(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleSubscriptionStatus handles GET /subscription/status.
func (h *Handler) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := h.billing.SubscriptionStatus(r.Context(), principal.UserID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// handleConfirmCode handles POST /verify/confirm.
func (h *Handler) handleConfirmCode(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Type        string `json:"type"`
		PhoneNumber string `json:"phoneNumber"`
		Code        string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.verification.Redeem(r.Context(), principal.UserID, domain.VerificationChannel(req.Type), req.PhoneNumber, req.Code)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
	})
}

// handleRequestCode handles POST /verify/request.
func (h *Handler) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Type        string `json:"type"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.verification.RequestCode(r.Context(), principal.UserID, domain.VerificationChannel(req.Type), req.PhoneNumber)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
	})
}

// respondWithServiceError maps service-layer errors onto HTTP statuses.
// Unknown errors become a generic 500; provider failures surface only the
// provider's message.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidArgument),
		errors.Is(err, app.ErrUnsupportedChannel),
		errors.Is(err, app.ErrInvalidOrExpiredCode):
		respondWithError(w, http.StatusBadRequest, userMessage(err))
	case errors.Is(err, app.ErrNotSubscribed):
		respondWithError(w, http.StatusNotFound, userMessage(err))
	case errors.Is(err, app.ErrTooManyRequests):
		respondWithError(w, http.StatusTooManyRequests, userMessage(err))
	default:
		var apiErr *stripeclient.APIError
		if errors.As(err, &apiErr) {
			respondWithError(w, http.StatusBadGateway, apiErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// userMessage unwraps to the sentinel text so wrapped context (field names
// excepted) never reaches the client.
func userMessage(err error) string {
	for _, sentinel := range []error{
		app.ErrInvalidArgument,
		app.ErrUnsupportedChannel,
		app.ErrInvalidOrExpiredCode,
		app.ErrNotSubscribed,
		app.ErrTooManyRequests,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// respondWithError writes the single error response shape.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
