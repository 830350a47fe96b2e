package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/volare/internal/models"
)

// ErrBookingNotFound is returned when a booking record does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// SessionStorage persists the single AirIQ session record.
type SessionStorage interface {
	// SaveSession inserts or replaces the session record.
	SaveSession(ctx context.Context, session *models.Session) error

	// LoadSession returns the stored session, or (nil, nil) when none exists.
	LoadSession(ctx context.Context) (*models.Session, error)

	// DeleteSession removes the session record. Deleting a missing record is not an error.
	DeleteSession(ctx context.Context) error
}

// BookingStorage persists booking records.
type BookingStorage interface {
	SaveBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, limit int) ([]*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	CountBookings(ctx context.Context) (int, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	SessionStorage() SessionStorage
	BookingStorage() BookingStorage

	// RunValueLogGC triggers one Badger value-log garbage collection cycle.
	RunValueLogGC() error

	Close() error
}
