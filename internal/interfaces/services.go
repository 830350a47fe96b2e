package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ternarybob/volare/internal/airiq"
	"github.com/ternarybob/volare/internal/models"
)

// AirIQDispatcher is the outbound AirIQ call surface consumed by services.
// Implemented by *airiq.Client.
type AirIQDispatcher interface {
	Availability(ctx context.Context, req airiq.AvailabilityRequest) (json.RawMessage, error)
	Pricing(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	Book(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// BookingService coordinates AirIQ calls with local booking records.
type BookingService interface {
	Search(ctx context.Context, req models.SearchRequest) (json.RawMessage, error)
	Price(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	Book(ctx context.Context, req models.BookRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, limit int) ([]*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// SessionController exposes the AirIQ session lifecycle to the HTTP surface.
// Implemented by *airiq.SessionManager.
type SessionController interface {
	Status() models.SessionStatus
	ForceLogin(ctx context.Context) error
	SetToken(token string, expiry time.Time)
	Invalidate()
}

// PDFService renders booking records as printable documents.
type PDFService interface {
	RenderItinerary(booking *models.Booking) ([]byte, error)
}
