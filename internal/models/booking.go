package models

import (
	"encoding/json"
	"time"
)

// BookingStatus reflects what the provider's status envelope said about a
// submitted booking.
type BookingStatus string

const (
	// BookingStatusConfirmed means the reply carried ResultCode "1".
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusFailed means the reply carried a non-success ResultCode.
	BookingStatusFailed BookingStatus = "failed"
	// BookingStatusSubmitted means the reply had no parsable status envelope.
	BookingStatusSubmitted BookingStatus = "submitted"
)

// Booking is a locally stored record of a booking submission. The raw
// request and response are kept verbatim; only the status envelope is
// interpreted.
type Booking struct {
	ID          string          `json:"id"`
	Origin      string          `json:"origin,omitempty"`
	Destination string          `json:"destination,omitempty"`
	FlightDate  string          `json:"flight_date,omitempty"` // YYYYMMDD, as sent on the wire
	Adults      int             `json:"adults,omitempty"`
	Children    int             `json:"children,omitempty"`
	Infants     int             `json:"infants,omitempty"`
	Status      BookingStatus   `json:"status"`
	Request     json.RawMessage `json:"request,omitempty"`  // Payload forwarded to AirIQ
	Response    json.RawMessage `json:"response,omitempty"` // Raw AirIQ reply
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SearchRequest is a caller-facing one-way availability query.
type SearchRequest struct {
	Origin      string `json:"origin" validate:"required,len=3,alpha"`
	Destination string `json:"destination" validate:"required,len=3,alpha"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Adults      int    `json:"adults" validate:"omitempty,min=1,max=9"`
	Children    int    `json:"children" validate:"min=0,max=9"`
	Infants     int    `json:"infants" validate:"min=0,max=9"`
	Cabin       string `json:"cabin" validate:"omitempty,len=1,alpha"`
	DirectOnly  bool   `json:"direct_only"`
}

// BookRequest wraps a raw AirIQ booking payload with the metadata kept on
// the local record. The payload is forwarded to the provider unmodified
// apart from the AgentInfo block.
type BookRequest struct {
	Origin      string          `json:"origin" validate:"omitempty,len=3,alpha"`
	Destination string          `json:"destination" validate:"omitempty,len=3,alpha"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Adults      int             `json:"adults" validate:"min=0,max=9"`
	Children    int             `json:"children" validate:"min=0,max=9"`
	Infants     int             `json:"infants" validate:"min=0,max=9"`
	Payload     json.RawMessage `json:"payload" validate:"required"`
}
