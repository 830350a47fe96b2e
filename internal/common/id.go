package common

import (
	"github.com/google/uuid"
)

// NewBookingID generates a unique booking record ID with the "bkg_" prefix
// Format: bkg_<uuid>
func NewBookingID() string {
	return "bkg_" + uuid.New().String()
}
