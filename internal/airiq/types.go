// Package airiq provides a client for the AirIQ TravelAPI flight-booking
// service, including session token management and request dispatch.
package airiq

import (
	"regexp"
	"strings"
	"time"
)

const (
	// resultCodeSuccess is the Status.ResultCode the provider sends on
	// success. Anything else is a failure, HTTP 200 or not.
	resultCodeSuccess = "1"

	// flightDateFormat is the compact date layout the wire format uses.
	flightDateFormat = "20060102"

	tripTypeOneWay  = "O"
	defaultCabin    = "E"
	defaultFareType = "N"

	appType    = "API"
	appVersion = 2.0
)

var stationPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// AuthScheme selects how Authorization header values are formed. The live
// endpoint accepts bare values; the bearer variant exists for gateways that
// insist on RFC 6750 prefixes. The dispatcher flips to the alternate scheme
// on its single post-relogin retry.
type AuthScheme string

const (
	// AuthSchemeRaw sends the encoded credential string and the session
	// token without any prefix.
	AuthSchemeRaw AuthScheme = "raw"

	// AuthSchemeBearer sends "Basic <credentials>" on login and
	// "Bearer <token>" on data calls.
	AuthSchemeBearer AuthScheme = "bearer"
)

// ParseAuthScheme maps a config value to a scheme, defaulting to raw.
func ParseAuthScheme(value string) AuthScheme {
	if strings.EqualFold(value, string(AuthSchemeBearer)) {
		return AuthSchemeBearer
	}
	return AuthSchemeRaw
}

func (s AuthScheme) alternate() AuthScheme {
	if s == AuthSchemeBearer {
		return AuthSchemeRaw
	}
	return AuthSchemeBearer
}

func (s AuthScheme) loginAuthorization(encodedCreds string) string {
	if s == AuthSchemeBearer {
		return "Basic " + encodedCreds
	}
	return encodedCreds
}

func (s AuthScheme) dataAuthorization(token string) string {
	if s == AuthSchemeBearer {
		return "Bearer " + token
	}
	return token
}

// AgentInfo identifies the calling agency. It is attached to every request
// payload the client sends.
type AgentInfo struct {
	AgentID  string  `json:"AgentId"`
	UserName string  `json:"UserName"`
	AppType  string  `json:"AppType"`
	Version  float64 `json:"Version"`
}

// AvailInfo describes one flight segment being searched.
type AvailInfo struct {
	DepartureStation string `json:"DepartureStation"`
	ArrivalStation   string `json:"ArrivalStation"`
	FlightDate       string `json:"FlightDate"`
	FarecabinOption  string `json:"FarecabinOption"`
	FareType         string `json:"FareType"`
	OnlyDirectFlight bool   `json:"OnlyDirectFlight"`
}

// PassengersInfo carries passenger counts for a search.
type PassengersInfo struct {
	AdultCount  int `json:"AdultCount"`
	ChildCount  int `json:"ChildCount"`
	InfantCount int `json:"InfantCount"`
}

type availabilityPayload struct {
	AgentInfo      AgentInfo      `json:"AgentInfo"`
	TripType       string         `json:"TripType"`
	AvailInfo      []AvailInfo    `json:"AvailInfo"`
	PassengersInfo PassengersInfo `json:"PassengersInfo"`
}

// StatusInfo is the result envelope the provider embeds in replies.
type StatusInfo struct {
	ResultCode  string `json:"ResultCode"`
	Description string `json:"Description"`
}

type loginResponse struct {
	Token  string      `json:"Token"`
	Status *StatusInfo `json:"Status"`
}

type statusEnvelope struct {
	Status *StatusInfo `json:"Status"`
}

// AvailabilityRequest describes a one-way availability search in
// caller-friendly terms. The client normalizes it into the wire payload.
type AvailabilityRequest struct {
	Origin      string
	Destination string
	Date        time.Time
	Adults      int
	Children    int
	Infants     int
	Cabin       string
	DirectOnly  bool
}

// payload validates and normalizes the request into wire form. Everything
// here runs before any network traffic, so a bad request never consumes a
// login or a rate-limit slot.
func (r AvailabilityRequest) payload(agent AgentInfo) (*availabilityPayload, error) {
	origin := strings.ToUpper(strings.TrimSpace(r.Origin))
	destination := strings.ToUpper(strings.TrimSpace(r.Destination))

	if !stationPattern.MatchString(origin) {
		return nil, &ValidationError{Field: "origin", Message: "must be a 3-letter IATA station code"}
	}
	if !stationPattern.MatchString(destination) {
		return nil, &ValidationError{Field: "destination", Message: "must be a 3-letter IATA station code"}
	}
	if r.Date.IsZero() {
		return nil, &ValidationError{Field: "date", Message: "must be set"}
	}

	adults := r.Adults
	if adults == 0 {
		adults = 1
	}
	if adults < 1 {
		return nil, &ValidationError{Field: "adults", Message: "must be at least 1"}
	}
	if r.Children < 0 {
		return nil, &ValidationError{Field: "children", Message: "must not be negative"}
	}
	if r.Infants < 0 {
		return nil, &ValidationError{Field: "infants", Message: "must not be negative"}
	}

	cabin := strings.ToUpper(strings.TrimSpace(r.Cabin))
	if cabin == "" {
		cabin = defaultCabin
	}

	return &availabilityPayload{
		AgentInfo: agent,
		TripType:  tripTypeOneWay,
		AvailInfo: []AvailInfo{{
			DepartureStation: origin,
			ArrivalStation:   destination,
			FlightDate:       r.Date.Format(flightDateFormat),
			FarecabinOption:  cabin,
			FareType:         defaultFareType,
			OnlyDirectFlight: r.DirectOnly,
		}},
		PassengersInfo: PassengersInfo{
			AdultCount:  adults,
			ChildCount:  r.Children,
			InfantCount: r.Infants,
		},
	}, nil
}

// tokenRejected reports whether a reply's status envelope indicates the
// session token was refused. AirIQ signals token timeouts inside an HTTP
// 200 body rather than with a status code.
func tokenRejected(status *StatusInfo) bool {
	if status == nil || status.ResultCode == "" || status.ResultCode == resultCodeSuccess {
		return false
	}
	description := strings.ToLower(status.Description)
	return strings.Contains(description, "token") || strings.Contains(description, "session")
}
