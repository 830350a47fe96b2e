package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
)

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// bookingReply is the slice of the provider response the ticket shows.
type bookingReply struct {
	BookingRefNo string `json:"BookingRefNo"`
	PNRNo        string `json:"PNRNo"`
	Status       *struct {
		ResultCode  string `json:"ResultCode"`
		Description string `json:"Description"`
	} `json:"Status"`
}

// RenderItinerary renders a booking record as a printable A4 ticket.
func (s *Service) RenderItinerary(booking *models.Booking) ([]byte, error) {
	if booking == nil {
		return nil, fmt.Errorf("booking is required")
	}

	s.logger.Debug().Str("booking_id", booking.ID).Msg("Rendering itinerary PDF")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "VOLARE", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, "Flight Itinerary", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	reply := parseReply(booking.Response)

	sectionTitle(pdf, "Booking")
	labelValue(pdf, "Reference", booking.ID)
	if reply.BookingRefNo != "" {
		labelValue(pdf, "Provider Ref", reply.BookingRefNo)
	}
	if reply.PNRNo != "" {
		labelValue(pdf, "PNR", reply.PNRNo)
	}
	labelValue(pdf, "Status", string(booking.Status))
	if !booking.CreatedAt.IsZero() {
		labelValue(pdf, "Booked", booking.CreatedAt.Format("02 Jan 2006 15:04 MST"))
	}
	pdf.Ln(4)

	sectionTitle(pdf, "Flight")
	route := booking.Origin
	if booking.Destination != "" {
		route = fmt.Sprintf("%s to %s", booking.Origin, booking.Destination)
	}
	if route != "" {
		labelValue(pdf, "Route", route)
	}
	if booking.FlightDate != "" {
		labelValue(pdf, "Date", formatFlightDate(booking.FlightDate))
	}
	labelValue(pdf, "Passengers", formatPassengers(booking))
	pdf.Ln(4)

	if reply.Status != nil && reply.Status.Description != "" {
		sectionTitle(pdf, "Provider Status")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, reply.Status.Description, "", "L", false)
		pdf.Ln(4)
	}

	// Footer
	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "This document is a booking record, not a boarding pass.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Str("booking_id", booking.ID).Int("pdf_size", buf.Len()).Msg("Itinerary PDF generated")
	return buf.Bytes(), nil
}

func parseReply(raw json.RawMessage) bookingReply {
	var reply bookingReply
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &reply)
	}
	return reply
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func labelValue(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

// formatFlightDate turns the wire date (20060102) into a readable one.
// Unparseable values are shown as-is.
func formatFlightDate(flightDate string) string {
	parsed, err := time.Parse("20060102", flightDate)
	if err != nil {
		return flightDate
	}
	return parsed.Format("02 Jan 2006")
}

func formatPassengers(booking *models.Booking) string {
	adults := booking.Adults
	if adults == 0 && booking.Children == 0 && booking.Infants == 0 {
		adults = 1
	}
	out := fmt.Sprintf("%d adult(s)", adults)
	if booking.Children > 0 {
		out += fmt.Sprintf(", %d child(ren)", booking.Children)
	}
	if booking.Infants > 0 {
		out += fmt.Sprintf(", %d infant(s)", booking.Infants)
	}
	return out
}
