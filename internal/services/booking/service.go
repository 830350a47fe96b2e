package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/airiq"
	"github.com/ternarybob/volare/internal/common"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
)

const searchDateFormat = "2006-01-02"

// Service implements interfaces.BookingService. It validates requests,
// forwards them through the AirIQ dispatcher and keeps a local ledger of
// booking outcomes.
type Service struct {
	client   interfaces.AirIQDispatcher
	storage  interfaces.BookingStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// Compile-time assertion
var _ interfaces.BookingService = (*Service)(nil)

// NewService creates a new booking service
func NewService(client interfaces.AirIQDispatcher, storage interfaces.BookingStorage, logger arbor.ILogger) *Service {
	return &Service{
		client:   client,
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

// Search runs a one-way availability search and returns the provider reply
// unmodified.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (json.RawMessage, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	date, err := time.Parse(searchDateFormat, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid search date %q: %w", req.Date, err)
	}

	s.logger.Info().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Str("date", req.Date).
		Msg("Searching flight availability")

	return s.client.Availability(ctx, airiq.AvailabilityRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        date,
		Adults:      req.Adults,
		Children:    req.Children,
		Infants:     req.Infants,
		Cabin:       req.Cabin,
		DirectOnly:  req.DirectOnly,
	})
}

// Price forwards a pricing payload to the provider.
func (s *Service) Price(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	s.logger.Debug().Int("payload_len", len(payload)).Msg("Forwarding pricing request")
	return s.client.Pricing(ctx, payload)
}

// Book submits a booking payload and records the outcome. The record is
// kept even when the provider reports a failure so the ledger shows what
// was attempted.
func (s *Service) Book(ctx context.Context, req models.BookRequest) (*models.Booking, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	raw, err := s.client.Book(ctx, req.Payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &models.Booking{
		ID:          common.NewBookingID(),
		Origin:      strings.ToUpper(strings.TrimSpace(req.Origin)),
		Destination: strings.ToUpper(strings.TrimSpace(req.Destination)),
		FlightDate:  wireDate(req.Date),
		Adults:      req.Adults,
		Children:    req.Children,
		Infants:     req.Infants,
		Status:      statusFromResponse(raw),
		Request:     req.Payload,
		Response:    raw,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// A booking the provider accepted must not look failed because the
	// local ledger write broke; the error is logged instead.
	if err := s.storage.SaveBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to record booking")
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("status", string(booking.Status)).
		Msg("Booking submitted")

	return booking, nil
}

// GetBooking returns one recorded booking by ID.
func (s *Service) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.storage.GetBooking(ctx, id)
}

// ListBookings returns recorded bookings, newest first.
func (s *Service) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	return s.storage.ListBookings(ctx, limit)
}

// DeleteBooking removes a recorded booking.
func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	return s.storage.DeleteBooking(ctx, id)
}

// wireDate converts a 2006-01-02 date to the compact wire form the ledger
// stores. Validation already ran, so bad input just passes through.
func wireDate(date string) string {
	parsed, err := time.Parse(searchDateFormat, date)
	if err != nil {
		return date
	}
	return parsed.Format("20060102")
}

// statusFromResponse classifies the provider reply. Without a readable
// status envelope the outcome is unknown, so the booking stays submitted.
func statusFromResponse(raw json.RawMessage) models.BookingStatus {
	var env struct {
		Status *airiq.StatusInfo `json:"Status"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Status == nil || env.Status.ResultCode == "" {
		return models.BookingStatusSubmitted
	}
	if env.Status.ResultCode == "1" {
		return models.BookingStatusConfirmed
	}
	return models.BookingStatusFailed
}
