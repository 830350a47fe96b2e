package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// BookingStorage implements the BookingStorage interface for Badger
type BookingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewBookingStorage creates a new BookingStorage instance
func NewBookingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.BookingStorage {
	return &BookingStorage{
		db:     db,
		logger: logger,
	}
}

func (s *BookingStorage) SaveBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		return fmt.Errorf("booking ID is required")
	}

	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	if err := s.db.Store().Upsert(booking.ID, booking); err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func (s *BookingStorage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Store().Get(id, &booking); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListBookings returns bookings newest first. A limit of zero or less
// returns everything.
func (s *BookingStorage) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.Store().Find(&bookings, nil); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	if limit > 0 && len(bookings) > limit {
		bookings = bookings[:limit]
	}

	result := make([]*models.Booking, len(bookings))
	for i := range bookings {
		result[i] = &bookings[i]
	}
	return result, nil
}

func (s *BookingStorage) DeleteBooking(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Booking{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrBookingNotFound
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

func (s *BookingStorage) CountBookings(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Booking{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return int(count), nil
}
