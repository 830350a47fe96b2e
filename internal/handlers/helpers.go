package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/volare/internal/airiq"
	"github.com/ternarybob/volare/internal/interfaces"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteData writes a standard success JSON response carrying a payload.
func WriteData(w http.ResponseWriter, statusCode int, data interface{}) error {
	return WriteJSON(w, statusCode, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError writes an error response with the status code mapped
// from the error type.
func WriteServiceError(w http.ResponseWriter, err error) error {
	return WriteError(w, StatusForError(err), err.Error())
}

// StatusForError maps service and client errors to HTTP status codes.
// Provider-side failures surface as 502 so callers can tell them apart
// from faults in this service.
func StatusForError(err error) int {
	var valErr *airiq.ValidationError
	var valErrs validator.ValidationErrors
	var authErr *airiq.AuthError
	var authzErr *airiq.AuthorizationError
	var apiErr *airiq.APIError
	var rateErr *airiq.RateLimitError

	switch {
	case errors.As(err, &valErr), errors.As(err, &valErrs):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, airiq.ErrLoginBudgetExhausted), errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &authErr), errors.As(err, &authzErr), errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetLimitParam extracts a positive "limit" query parameter, falling back
// to the given default.
func GetLimitParam(r *http.Request, fallback int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			return limit
		}
	}
	return fallback
}
