package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
)

// SearchHandler serves availability and pricing requests. Provider replies
// are embedded unchanged under the standard response envelope so the UI
// works with the AirIQ shapes directly.
type SearchHandler struct {
	service interfaces.BookingService
	logger  arbor.ILogger
}

func NewSearchHandler(service interfaces.BookingService, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger,
	}
}

// SearchFlightsHandler handles POST /api/search
func (h *SearchHandler) SearchFlightsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Str("origin", req.Origin).Str("destination", req.Destination).Msg("Search failed")
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}

// PricingHandler handles POST /api/pricing. The body is an opaque AirIQ
// pricing payload and is forwarded as-is.
func (h *SearchHandler) PricingHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := h.service.Price(r.Context(), payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Pricing request failed")
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}
