package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
)

const defaultBookingListLimit = 50

// BookingHandler serves the booking ledger and ticket downloads.
type BookingHandler struct {
	service interfaces.BookingService
	pdf     interfaces.PDFService
	logger  arbor.ILogger
}

func NewBookingHandler(service interfaces.BookingService, pdfService interfaces.PDFService, logger arbor.ILogger) *BookingHandler {
	return &BookingHandler{
		service: service,
		pdf:     pdfService,
		logger:  logger,
	}
}

// ListBookingsHandler handles GET /api/bookings
func (h *BookingHandler) ListBookingsHandler(w http.ResponseWriter, r *http.Request) {
	limit := GetLimitParam(r, defaultBookingListLimit)

	bookings, err := h.service.ListBookings(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list bookings")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"count":    len(bookings),
		"bookings": bookings,
	})
}

// CreateBookingHandler handles POST /api/bookings
func (h *BookingHandler) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	booking, err := h.service.Book(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Booking failed")
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, booking)
}

// GetBookingHandler handles GET /api/bookings/{id}
func (h *BookingHandler) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	id := bookingIDFromPath(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, booking)
}

// DeleteBookingHandler handles DELETE /api/bookings/{id}
func (h *BookingHandler) DeleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	id := bookingIDFromPath(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	if err := h.service.DeleteBooking(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().Str("booking_id", id).Msg("Booking deleted")
	WriteSuccess(w, "Booking deleted")
}

// TicketHandler handles GET /api/bookings/{id}/ticket, returning the
// itinerary as a PDF download.
func (h *BookingHandler) TicketHandler(w http.ResponseWriter, r *http.Request) {
	id := bookingIDFromPath(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Booking ID is required")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	data, err := h.pdf.RenderItinerary(booking)
	if err != nil {
		h.logger.Error().Err(err).Str("booking_id", id).Msg("Failed to render ticket")
		WriteError(w, http.StatusInternalServerError, "Failed to render ticket")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	w.Write(data)
}

// bookingIDFromPath extracts the booking ID from /api/bookings/{id} or
// /api/bookings/{id}/ticket.
func bookingIDFromPath(path string) string {
	id := strings.TrimPrefix(path, "/api/bookings/")
	id = strings.TrimSuffix(id, "/ticket")
	return strings.Trim(id, "/")
}
