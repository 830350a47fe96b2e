package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/airiq"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
)

type stubBookingService struct {
	raw        json.RawMessage
	booking    *models.Booking
	bookings   []*models.Booking
	err        error
	lastSearch models.SearchRequest
	lastLimit  int
	deleted    []string
}

func (s *stubBookingService) Search(_ context.Context, req models.SearchRequest) (json.RawMessage, error) {
	s.lastSearch = req
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func (s *stubBookingService) Price(_ context.Context, payload json.RawMessage) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func (s *stubBookingService) Book(_ context.Context, req models.BookRequest) (*models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.booking, nil
}

func (s *stubBookingService) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.booking, nil
}

func (s *stubBookingService) ListBookings(_ context.Context, limit int) ([]*models.Booking, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.bookings, nil
}

func (s *stubBookingService) DeleteBooking(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubSessionController struct {
	status      models.SessionStatus
	loginErr    error
	logins      int
	tokenSet    string
	expirySet   time.Time
	invalidated int
}

func (s *stubSessionController) Status() models.SessionStatus { return s.status }

func (s *stubSessionController) ForceLogin(_ context.Context) error {
	s.logins++
	return s.loginErr
}

func (s *stubSessionController) SetToken(token string, expiry time.Time) {
	s.tokenSet = token
	s.expirySet = expiry
}

func (s *stubSessionController) Invalidate() { s.invalidated++ }

type stubPDFService struct {
	data []byte
	err  error
}

func (s *stubPDFService) RenderItinerary(_ *models.Booking) ([]byte, error) {
	return s.data, s.err
}

func TestSearchFlightsHandler(t *testing.T) {
	service := &stubBookingService{raw: json.RawMessage(`{"ItineraryFlightList":[{"FlightId":"AIQ-101"}]}`)}
	handler := NewSearchHandler(service, arbor.NewLogger())

	body := `{"origin":"DEL","destination":"BOM","date":"2025-10-15","adults":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SearchFlightsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success","data":{"ItineraryFlightList":[{"FlightId":"AIQ-101"}]}}`, rec.Body.String())
	assert.Equal(t, "DEL", service.lastSearch.Origin)
	assert.Equal(t, 2, service.lastSearch.Adults)
}

func TestSearchFlightsHandlerRejectsBadInput(t *testing.T) {
	handler := NewSearchHandler(&stubBookingService{}, arbor.NewLogger())

	// Wrong method.
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	handler.SearchFlightsHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// Broken JSON.
	req = httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	handler.SearchFlightsHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchFlightsHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "validation", err: &airiq.ValidationError{Field: "origin", Message: "bad"}, wantCode: http.StatusBadRequest},
		{name: "budget exhausted", err: airiq.ErrLoginBudgetExhausted, wantCode: http.StatusTooManyRequests},
		{name: "auth failure", err: &airiq.AuthError{StatusCode: 200, Message: "invalid"}, wantCode: http.StatusBadGateway},
		{name: "authorization failure", err: &airiq.AuthorizationError{Endpoint: "/Availability"}, wantCode: http.StatusBadGateway},
		{name: "api error", err: &airiq.APIError{StatusCode: 500, Endpoint: "/Availability"}, wantCode: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSearchHandler(&stubBookingService{err: tt.err}, arbor.NewLogger())

			body := `{"origin":"DEL","destination":"BOM","date":"2025-10-15"}`
			req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
			rec := httptest.NewRecorder()

			handler.SearchFlightsHandler(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":"error"`)
		})
	}
}

func TestPricingHandler(t *testing.T) {
	service := &stubBookingService{raw: json.RawMessage(`{"Status":{"ResultCode":"1"}}`)}
	handler := NewSearchHandler(service, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/pricing", strings.NewReader(`{"FlightPricingInfo":{}}`))
	rec := httptest.NewRecorder()

	handler.PricingHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","data":{"Status":{"ResultCode":"1"}}}`, rec.Body.String())
}

func TestCreateBookingHandler(t *testing.T) {
	service := &stubBookingService{booking: &models.Booking{ID: "bkg_1", Status: models.BookingStatusConfirmed}}
	handler := NewBookingHandler(service, &stubPDFService{}, arbor.NewLogger())

	body := `{"origin":"DEL","destination":"BOM","payload":{"BookingInfo":{}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateBookingHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status string         `json:"status"`
		Data   models.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "bkg_1", resp.Data.ID)
	assert.Equal(t, models.BookingStatusConfirmed, resp.Data.Status)
}

func TestListBookingsHandler(t *testing.T) {
	service := &stubBookingService{bookings: []*models.Booking{
		{ID: "bkg_2"},
		{ID: "bkg_1"},
	}}
	handler := NewBookingHandler(service, &stubPDFService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/bookings?limit=5", nil)
	rec := httptest.NewRecorder()

	handler.ListBookingsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, service.lastLimit)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	// Default limit applies when the parameter is absent or junk.
	req = httptest.NewRequest(http.MethodGet, "/api/bookings?limit=junk", nil)
	handler.ListBookingsHandler(httptest.NewRecorder(), req)
	assert.Equal(t, defaultBookingListLimit, service.lastLimit)
}

func TestGetBookingHandler(t *testing.T) {
	service := &stubBookingService{booking: &models.Booking{ID: "bkg_1"}}
	handler := NewBookingHandler(service, &stubPDFService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/bkg_1", nil)
	rec := httptest.NewRecorder()
	handler.GetBookingHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	service.err = interfaces.ErrBookingNotFound
	req = httptest.NewRequest(http.MethodGet, "/api/bookings/bkg_missing", nil)
	rec = httptest.NewRecorder()
	handler.GetBookingHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBookingHandler(t *testing.T) {
	service := &stubBookingService{}
	handler := NewBookingHandler(service, &stubPDFService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/bkg_1", nil)
	rec := httptest.NewRecorder()

	handler.DeleteBookingHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bkg_1"}, service.deleted)
}

func TestTicketHandler(t *testing.T) {
	service := &stubBookingService{booking: &models.Booking{ID: "bkg_1"}}
	pdf := &stubPDFService{data: []byte("%PDF-1.4 fake")}
	handler := NewBookingHandler(service, pdf, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/bkg_1/ticket", nil)
	rec := httptest.NewRecorder()

	handler.TicketHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bkg_1.pdf")
	assert.Equal(t, "%PDF-1.4 fake", rec.Body.String())
}

func TestSessionStatusHandler(t *testing.T) {
	expiry := time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC)
	session := &stubSessionController{status: models.SessionStatus{
		Authenticated: true,
		TokenPreview:  "TOK12345...",
		Expiry:        &expiry,
		Source:        "login",
		LoginsToday:   3,
		LoginLimit:    50,
	}}
	handler := NewSessionHandler(session, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()

	handler.StatusHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"authenticated":true`)
	assert.Contains(t, body, `"token_preview":"TOK12345..."`)
	assert.Contains(t, body, `"logins_today":3`)
	// The status view never carries a full token.
	assert.NotContains(t, body, `"token":`)
}

func TestSessionLoginHandler(t *testing.T) {
	session := &stubSessionController{}
	handler := NewSessionHandler(session, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/session/login", nil)
	rec := httptest.NewRecorder()
	handler.LoginHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, session.logins)

	session.loginErr = airiq.ErrLoginBudgetExhausted
	rec = httptest.NewRecorder()
	handler.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/session/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSetTokenHandler(t *testing.T) {
	session := &stubSessionController{}
	handler := NewSessionHandler(session, arbor.NewLogger())

	// Missing token.
	req := httptest.NewRequest(http.MethodPost, "/api/session/token", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.SetTokenHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bad expiry format.
	req = httptest.NewRequest(http.MethodPost, "/api/session/token",
		strings.NewReader(`{"token":"MANUAL-TOKEN-123","expiry":"tomorrow"}`))
	rec = httptest.NewRecorder()
	handler.SetTokenHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Token with explicit expiry.
	req = httptest.NewRequest(http.MethodPost, "/api/session/token",
		strings.NewReader(`{"token":"MANUAL-TOKEN-123","expiry":"2025-10-16T00:00:00Z"}`))
	rec = httptest.NewRecorder()
	handler.SetTokenHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MANUAL-TOKEN-123", session.tokenSet)
	assert.Equal(t, time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC), session.expirySet)

	// Token without expiry leaves the policy to the session manager.
	req = httptest.NewRequest(http.MethodPost, "/api/session/token",
		strings.NewReader(`{"token":"MANUAL-TOKEN-456"}`))
	rec = httptest.NewRecorder()
	handler.SetTokenHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, session.expirySet.IsZero())
}

func TestInvalidateHandler(t *testing.T) {
	session := &stubSessionController{}
	handler := NewSessionHandler(session, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/session", nil)
	rec := httptest.NewRecorder()

	handler.InvalidateHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, session.invalidated)
}

func TestAPIHandler(t *testing.T) {
	handler := NewAPIHandler()

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	handler.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)

	rec = httptest.NewRecorder()
	handler.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingIDFromPath(t *testing.T) {
	assert.Equal(t, "bkg_1", bookingIDFromPath("/api/bookings/bkg_1"))
	assert.Equal(t, "bkg_1", bookingIDFromPath("/api/bookings/bkg_1/ticket"))
	assert.Equal(t, "bkg_1", bookingIDFromPath("/api/bookings/bkg_1/"))
	assert.Equal(t, "", bookingIDFromPath("/api/bookings/"))
}
